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
	"math"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewsim/base"
	"github.com/gorse-io/reviewsim/config"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SimilarityEngine scores candidate rows against the history rows of a user.
type SimilarityEngine interface {
	// Algorithm returns the name of the representation scored by the engine.
	Algorithm() string
	// Score returns one score per candidate. Candidates equal to base.NotId get 0.
	Score(history []int32, candidates []int32) []float64
	// Similarity returns the similarity between two rows.
	Similarity(i, j int32) float64
}

// NewSimilarityEngine creates the engine paired with an algorithm.
func NewSimilarityEngine(algorithm string, features *mat.Dense) (SimilarityEngine, error) {
	switch algorithm {
	case config.AlgorithmTopic:
		return NewJensenShannonEngine(features), nil
	case config.AlgorithmWeight:
		return NewCosineEngine(features), nil
	}
	return nil, errors.NotValidf("algorithm %q", algorithm)
}

// CosineEngine scores candidates by the sum of cosine similarities to history items.
// Similarities between all items are computed once.
type CosineEngine struct {
	similarity *mat.SymDense
}

// NewCosineEngine computes the cosine similarity matrix of rows of features. The
// similarity between an item and itself is 0.
func NewCosineEngine(features *mat.Dense) *CosineEngine {
	rows, cols := features.Dims()
	normalized := mat.NewDense(rows, cols, nil)
	normalized.Copy(features)
	for i := 0; i < rows; i++ {
		row := normalized.RawRowView(i)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}
	similarity := mat.NewSymDense(rows, nil)
	similarity.SymOuterK(1, normalized)
	for i := 0; i < rows; i++ {
		similarity.SetSym(i, i, 0)
	}
	return &CosineEngine{similarity: similarity}
}

// Algorithm returns "weight".
func (e *CosineEngine) Algorithm() string {
	return config.AlgorithmWeight
}

// Matrix returns the item similarity matrix. It must not be modified.
func (e *CosineEngine) Matrix() *mat.SymDense {
	return e.similarity
}

// Similarity returns the cosine similarity between two rows.
func (e *CosineEngine) Similarity(i, j int32) float64 {
	if i == base.NotId || j == base.NotId {
		return 0
	}
	return e.similarity.At(int(i), int(j))
}

// Score sums similarities between each candidate and history items. Candidates in the
// history score 0.
func (e *CosineEngine) Score(history []int32, candidates []int32) []float64 {
	historySet := mapset.NewThreadUnsafeSet(history...)
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		if candidate == base.NotId || historySet.Contains(candidate) {
			continue
		}
		for _, h := range history {
			scores[i] += e.similarity.At(int(h), int(candidate))
		}
	}
	return scores
}

// JensenShannonEngine scores candidates by Jensen-Shannon similarity between the summed
// topic distribution of history items and the topic distribution of each candidate.
type JensenShannonEngine struct {
	features *mat.Dense
}

// NewJensenShannonEngine creates an engine over topic distributions of items.
func NewJensenShannonEngine(features *mat.Dense) *JensenShannonEngine {
	return &JensenShannonEngine{features: features}
}

// Algorithm returns "topic".
func (e *JensenShannonEngine) Algorithm() string {
	return config.AlgorithmTopic
}

// Similarity returns the Jensen-Shannon similarity between topic distributions of two rows.
func (e *JensenShannonEngine) Similarity(i, j int32) float64 {
	if i == base.NotId || j == base.NotId {
		return 0
	}
	return JensenShannonSimilarity(e.features.RawRowView(int(i)), e.features.RawRowView(int(j)))
}

// Score compares the summed topic distribution of history items with each candidate.
func (e *JensenShannonEngine) Score(history []int32, candidates []int32) []float64 {
	profile := SumRows(e.features, history)
	scores := make([]float64, len(candidates))
	for i, candidate := range candidates {
		if candidate == base.NotId {
			continue
		}
		scores[i] = JensenShannonSimilarity(profile, e.features.RawRowView(int(candidate)))
	}
	return scores
}

// JensenShannonSimilarity returns 1 - sqrt(JSD(p, q)). The divergence uses logarithm base 2,
// so the distance lies in [0, 1]. Vectors are rescaled to unit mass when their sums deviate
// from 1. A vector without mass has similarity 0 to everything. The result is clamped to [0, 1].
func JensenShannonSimilarity(p, q []float64) float64 {
	p, ok := toDistribution(p)
	if !ok {
		return 0
	}
	q, ok = toDistribution(q)
	if !ok {
		return 0
	}
	divergence := 0.0
	for i := range p {
		m := (p[i] + q[i]) / 2
		if p[i] > 0 {
			divergence += p[i] * math.Log2(p[i]/m) / 2
		}
		if q[i] > 0 {
			divergence += q[i] * math.Log2(q[i]/m) / 2
		}
	}
	similarity := 1 - math.Sqrt(math.Max(divergence, 0))
	return math.Min(math.Max(similarity, 0), 1)
}

func toDistribution(v []float64) ([]float64, bool) {
	sum := floats.Sum(v)
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, false
	}
	if math.Abs(sum-1) <= 1e-6 {
		return v, true
	}
	scaled := make([]float64, len(v))
	floats.ScaleTo(scaled, 1/sum, v)
	return scaled, true
}
