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
	"sort"

	"github.com/gorse-io/reviewsim/common/parallel"
	"github.com/gorse-io/reviewsim/dataset"
	"github.com/gorse-io/reviewsim/text"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// Document is the sparse bag of words of a document. Terms are sorted in ascending order.
type Document struct {
	Terms  []int32
	Counts []float64
}

// BagOfWords is a corpus of term counts. Terms are numbered in lexicographic order and
// the frequency of a term in the vocabulary is its document frequency.
type BagOfWords struct {
	Vocabulary *dataset.FreqDict
	Documents  []Document
}

// CountVectorizer counts normalized tokens of documents.
type CountVectorizer struct {
	normalizer *text.Normalizer
}

func NewCountVectorizer(normalizer *text.Normalizer) *CountVectorizer {
	return &CountVectorizer{normalizer: normalizer}
}

// FitTransform builds the vocabulary of documents and counts terms. It fails if the corpus
// is empty or no document contains a token.
func (v *CountVectorizer) FitTransform(ctx context.Context, documents []string, jobs int) (*BagOfWords, error) {
	if len(documents) == 0 {
		return nil, errors.NotValidf("empty corpus")
	}
	// tokenize documents
	counts := make([]map[string]float64, len(documents))
	if err := parallel.Parallel(ctx, len(documents), jobs, func(_, jobId int) error {
		tf := make(map[string]float64)
		for _, token := range v.normalizer.Normalize(documents[jobId]) {
			tf[token]++
		}
		counts[jobId] = tf
		return nil
	}); err != nil {
		return nil, errors.Trace(err)
	}
	// count document frequency
	vocabulary := dataset.NewFreqDict()
	for _, tf := range counts {
		terms := make([]string, 0, len(tf))
		for term := range tf {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			vocabulary.Id(term)
		}
	}
	if vocabulary.Count() == 0 {
		return nil, errors.NotValidf("empty vocabulary, documents contain only stop words")
	}
	vocabulary.Sort()
	// convert to sparse vectors
	bow := &BagOfWords{
		Vocabulary: vocabulary,
		Documents:  make([]Document, len(documents)),
	}
	for i, tf := range counts {
		doc := Document{
			Terms:  make([]int32, 0, len(tf)),
			Counts: make([]float64, 0, len(tf)),
		}
		for term := range tf {
			id, _ := vocabulary.Lookup(term)
			doc.Terms = append(doc.Terms, int32(id))
		}
		sort.Slice(doc.Terms, func(a, b int) bool { return doc.Terms[a] < doc.Terms[b] })
		for _, id := range doc.Terms {
			term, _ := vocabulary.String(int(id))
			doc.Counts = append(doc.Counts, tf[term])
		}
		bow.Documents[i] = doc
	}
	return bow, nil
}

// CountDocuments returns the number of documents.
func (bow *BagOfWords) CountDocuments() int {
	return len(bow.Documents)
}

// CountTerms returns the size of vocabulary.
func (bow *BagOfWords) CountTerms() int {
	return bow.Vocabulary.Count()
}

// Dense converts term counts to a dense documents × terms matrix.
func (bow *BagOfWords) Dense() *mat.Dense {
	m := mat.NewDense(bow.CountDocuments(), bow.CountTerms(), nil)
	for i, doc := range bow.Documents {
		for j, term := range doc.Terms {
			m.Set(i, int(term), doc.Counts[j])
		}
	}
	return m
}
