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
	"testing"

	"github.com/gorse-io/reviewsim/base"
	"github.com/gorse-io/reviewsim/config"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewSimilarityEngine(t *testing.T) {
	features := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	engine, err := NewSimilarityEngine(config.AlgorithmTopic, features)
	require.NoError(t, err)
	assert.Equal(t, config.AlgorithmTopic, engine.Algorithm())
	engine, err = NewSimilarityEngine(config.AlgorithmWeight, features)
	require.NoError(t, err)
	assert.Equal(t, config.AlgorithmWeight, engine.Algorithm())
	_, err = NewSimilarityEngine("bm25", features)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestCosineEngine(t *testing.T) {
	features := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		2, 2, 0,
		0, 1, 1,
		0, 0, 0,
	})
	engine := NewCosineEngine(features)
	sim := engine.Matrix()
	n := sim.SymmetricDim()
	assert.Equal(t, 4, n)
	for i := 0; i < n; i++ {
		assert.Zero(t, sim.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(t, sim.At(i, j), sim.At(j, i))
		}
	}
	assert.InDelta(t, 1, sim.At(0, 1), 1e-12)
	assert.InDelta(t, 0.5, sim.At(0, 2), 1e-12)
	// zero row
	assert.Zero(t, sim.At(3, 0))
	assert.Zero(t, engine.Similarity(0, base.NotId))

	// self exclusion
	scores := engine.Score([]int32{0}, []int32{0, 1, 2, base.NotId})
	assert.InDeltaSlice(t, []float64{0, 1, 0.5, 0}, scores, 1e-12)
	// sum over history
	scores = engine.Score([]int32{0, 2}, []int32{1})
	assert.InDeltaSlice(t, []float64{1.5}, scores, 1e-12)
	// empty history
	assert.Equal(t, []float64{0, 0}, engine.Score(nil, []int32{0, 1}))
}

func TestJensenShannonSimilarity(t *testing.T) {
	// identical
	assert.InDelta(t, 1, JensenShannonSimilarity([]float64{0.3, 0.7}, []float64{0.3, 0.7}), 1e-12)
	// disjoint support reaches the bound of base 2
	assert.InDelta(t, 0, JensenShannonSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-12)
	// unnormalized vectors are rescaled
	assert.InDelta(t, 1, JensenShannonSimilarity([]float64{0.6, 1.4}, []float64{0.3, 0.7}), 1e-12)
	// zero mass
	assert.Zero(t, JensenShannonSimilarity([]float64{0, 0}, []float64{0, 0}))
	assert.Zero(t, JensenShannonSimilarity([]float64{0, 0}, []float64{0.5, 0.5}))
	// symmetric and bounded
	p, q := []float64{0.1, 0.2, 0.7}, []float64{0.5, 0.4, 0.1}
	s := JensenShannonSimilarity(p, q)
	assert.Equal(t, s, JensenShannonSimilarity(q, p))
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)
	assert.False(t, math.IsNaN(s))
}

func TestJensenShannonEngine(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{
		0.9, 0.1,
		0.8, 0.2,
		0.1, 0.9,
	})
	engine := NewJensenShannonEngine(features)
	scores := engine.Score([]int32{0}, []int32{1, 2, base.NotId, 1})
	assert.Len(t, scores, 4)
	assert.Greater(t, scores[0], scores[1])
	assert.Zero(t, scores[2])
	assert.Equal(t, scores[0], scores[3])
	// the profile of two items is rescaled to a distribution
	scores = engine.Score([]int32{0, 1}, []int32{0})
	assert.Greater(t, scores[0], 0.9)
	// empty history
	assert.Equal(t, []float64{0, 0}, engine.Score(nil, []int32{0, 1}))
	assert.InDelta(t, engine.Similarity(0, 2), engine.Similarity(2, 0), 1e-12)
	assert.Zero(t, engine.Similarity(base.NotId, 0))
}
