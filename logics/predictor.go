// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import (
	"context"
	"math"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewsim/base/log"
	"github.com/gorse-io/reviewsim/common/heap"
	"github.com/gorse-io/reviewsim/config"
	"github.com/gorse-io/reviewsim/dataset"
	"github.com/gorse-io/reviewsim/model"
	"github.com/gorse-io/reviewsim/text"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Score is the score of an item.
type Score struct {
	ItemId string
	Score  float64
}

// Predictor predicts how relevant items are to a user from the items the user reviewed.
// A Predictor is read-only after creation and safe for concurrent use.
type Predictor struct {
	snapshot *Snapshot
	engine   SimilarityEngine
}

// NewPredictor creates a predictor from a fitted snapshot.
func NewPredictor(snapshot *Snapshot) (*Predictor, error) {
	if err := snapshot.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	engine, err := NewSimilarityEngine(snapshot.Algorithm, snapshot.Features)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Predictor{snapshot: snapshot, engine: engine}, nil
}

// NewBackend creates the vectorization backend of an algorithm.
func NewBackend(cfg *config.Config, normalizer *text.Normalizer) (model.Backend, error) {
	switch cfg.Algorithm {
	case config.AlgorithmTopic:
		return model.NewLDA(normalizer, cfg.Topic.GetParams()), nil
	case config.AlgorithmWeight:
		return model.NewTFIDF(normalizer), nil
	}
	return nil, errors.NotValidf("algorithm %q", cfg.Algorithm)
}

// Fit aggregates reviews into item documents, vectorizes them and creates a predictor.
func Fit(ctx context.Context, reviews []dataset.Review, cfg *config.Config) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	normalizer, err := text.NewNormalizer(cfg.Normalizer)
	if err != nil {
		return nil, errors.Trace(err)
	}
	backend, err := NewBackend(cfg, normalizer)
	if err != nil {
		return nil, errors.Trace(err)
	}
	opts, err := cfg.DataSource.GetAggregateOptions()
	if err != nil {
		return nil, errors.Trace(err)
	}

	// aggregate reviews
	start := time.Now()
	corpus, err := dataset.Aggregate(reviews, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	FitSecondsVec.WithLabelValues("aggregate").Set(time.Since(start).Seconds())
	log.Logger().Info("aggregate reviews",
		zap.Int("n_reviews", len(reviews)),
		zap.Int("n_items", corpus.CountItems()),
		zap.Int("n_users", corpus.CountUsers()))

	// vectorize documents
	start = time.Now()
	features, err := backend.Fit(ctx, corpus.Documents(), cfg.GetFitConfig())
	if err != nil {
		return nil, errors.Trace(err)
	}
	FitSecondsVec.WithLabelValues("vectorize").Set(time.Since(start).Seconds())

	// build similarity engine
	start = time.Now()
	predictor, err := NewPredictor(&Snapshot{
		Algorithm: cfg.Algorithm,
		Items:     corpus.Items(),
		Features:  features,
		History:   corpus.History(),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	FitSecondsVec.WithLabelValues("engine").Set(time.Since(start).Seconds())
	return predictor, nil
}

// Algorithm returns "topic" or "weight".
func (p *Predictor) Algorithm() string {
	return p.engine.Algorithm()
}

// Snapshot returns the fitted state of the predictor.
func (p *Predictor) Snapshot() *Snapshot {
	return p.snapshot
}

// PredictForUser returns one score per candidate in the same order. All scores of an
// unknown user are NaN. Unknown candidates score 0.
func (p *Predictor) PredictForUser(userId string, candidates []string) []float64 {
	PredictTotalVec.WithLabelValues(p.Algorithm()).Inc()
	itemIds, exist := p.snapshot.History[userId]
	if !exist {
		LookupMissTotalVec.WithLabelValues("user").Inc()
		log.Logger().Debug("unknown user", zap.String("user_id", userId))
		scores := make([]float64, len(candidates))
		for i := range scores {
			scores[i] = math.NaN()
		}
		return scores
	}
	history := ResolveHistory(p.snapshot.Items, itemIds)
	return p.engine.Score(history, ResolveCandidates(p.snapshot.Items, candidates))
}

// Recommend ranks all items for a user and returns the top n. Items reviewed by the user
// are skipped if excludeHistory is set. An unknown user gets nothing.
func (p *Predictor) Recommend(userId string, n int, excludeHistory bool) []Score {
	itemIds, exist := p.snapshot.History[userId]
	if !exist {
		LookupMissTotalVec.WithLabelValues("user").Inc()
		return nil
	}
	history := ResolveHistory(p.snapshot.Items, itemIds)
	candidates := make([]int32, 0, p.snapshot.Items.Len())
	historySet := mapset.NewThreadUnsafeSet(history...)
	for row := int32(0); row < p.snapshot.Items.Len(); row++ {
		if excludeHistory && historySet.Contains(row) {
			continue
		}
		candidates = append(candidates, row)
	}
	PredictTotalVec.WithLabelValues(p.Algorithm()).Inc()
	scores := p.engine.Score(history, candidates)
	filter := heap.NewTopKFilter[int32, float64](n)
	for i, row := range candidates {
		filter.Push(row, scores[i])
	}
	return p.toScores(filter.PopAll())
}

// SimilarItems returns the n items most similar to an item. An unknown item gets nothing.
func (p *Predictor) SimilarItems(itemId string, n int) []Score {
	row, exist := p.snapshot.Items.ToNumber(itemId)
	if !exist {
		LookupMissTotalVec.WithLabelValues("item").Inc()
		return nil
	}
	filter := heap.NewTopKFilter[int32, float64](n)
	for other := int32(0); other < p.snapshot.Items.Len(); other++ {
		if other != row {
			filter.Push(other, p.engine.Similarity(row, other))
		}
	}
	return p.toScores(filter.PopAll())
}

func (p *Predictor) toScores(elems []heap.Elem[int32, float64]) []Score {
	scores := make([]Score, len(elems))
	for i, elem := range elems {
		scores[i] = Score{
			ItemId: p.snapshot.Items.ToName(elem.Value),
			Score:  elem.Weight,
		}
	}
	return scores
}
