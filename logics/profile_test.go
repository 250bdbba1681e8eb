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
	"testing"

	"github.com/gorse-io/reviewsim/base"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func newTestIndex(names ...string) *base.Index {
	index := base.NewMapIndex()
	for _, name := range names {
		index.Add(name)
	}
	return index
}

func TestResolveHistory(t *testing.T) {
	index := newTestIndex("a", "b", "c")
	assert.Equal(t, []int32{2, 0}, ResolveHistory(index, []string{"c", "x", "a", "c"}))
	assert.Empty(t, ResolveHistory(index, []string{"x", "y"}))
	assert.Empty(t, ResolveHistory(index, nil))
}

func TestResolveCandidates(t *testing.T) {
	index := newTestIndex("a", "b", "c")
	assert.Equal(t, []int32{1, base.NotId, 1, 0}, ResolveCandidates(index, []string{"b", "x", "b", "a"}))
	assert.Empty(t, ResolveCandidates(index, nil))
}

func TestSumRows(t *testing.T) {
	features := mat.NewDense(3, 2, []float64{
		0.1, 0.9,
		0.5, 0.5,
		1, 0,
	})
	assert.InDeltaSlice(t, []float64{1.1, 0.9}, SumRows(features, []int32{0, 2}), 1e-12)
	assert.Equal(t, []float64{0, 0}, SumRows(features, nil))
}
