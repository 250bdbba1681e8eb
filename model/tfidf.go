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

package model

import (
	"context"
	"math"
	"time"

	"github.com/gorse-io/reviewsim/base/log"
	"github.com/gorse-io/reviewsim/text"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// TFIDF weights raw term counts by smoothed inverse document frequency:
//
//	idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// Rows are not normalized.
type TFIDF struct {
	vectorizer *CountVectorizer
	vocabulary []string
	idf        []float64
}

func NewTFIDF(normalizer *text.Normalizer) *TFIDF {
	return &TFIDF{vectorizer: NewCountVectorizer(normalizer)}
}

// Vocabulary returns terms in column order. It is empty before Fit.
func (tfidf *TFIDF) Vocabulary() []string {
	return tfidf.vocabulary
}

// IDF returns inverse document frequencies in column order. It is empty before Fit.
func (tfidf *TFIDF) IDF() []float64 {
	return tfidf.idf
}

// Fit the TF-IDF weights of documents.
func (tfidf *TFIDF) Fit(ctx context.Context, documents []string, config *FitConfig) (*mat.Dense, error) {
	start := time.Now()
	bow, err := tfidf.vectorizer.FitTransform(ctx, documents, config.jobs())
	if err != nil {
		return nil, errors.Trace(err)
	}
	nDocs := float64(bow.CountDocuments())
	tfidf.idf = make([]float64, bow.CountTerms())
	tfidf.vocabulary = make([]string, bow.CountTerms())
	for t := range tfidf.idf {
		df := float64(bow.Vocabulary.Freq(t))
		tfidf.idf[t] = math.Log((1+nDocs)/(1+df)) + 1
		tfidf.vocabulary[t], _ = bow.Vocabulary.String(t)
	}
	weights := mat.NewDense(bow.CountDocuments(), bow.CountTerms(), nil)
	for i, doc := range bow.Documents {
		row := weights.RawRowView(i)
		for j, term := range doc.Terms {
			row[term] = doc.Counts[j] * tfidf.idf[term]
		}
	}
	log.Logger().Info("fit tfidf",
		zap.Int("n_documents", bow.CountDocuments()),
		zap.Int("n_terms", bow.CountTerms()),
		zap.String("fit_time", time.Since(start).String()))
	return weights, nil
}
