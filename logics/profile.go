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
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/reviewsim/base"
	"gonum.org/v1/gonum/mat"
)

// ResolveHistory converts item IDs of a user history to distinct rows in history order.
// Items missing from the index are skipped.
func ResolveHistory(index *base.Index, itemIds []string) []int32 {
	rows := make([]int32, 0, len(itemIds))
	seen := mapset.NewThreadUnsafeSet[int32]()
	for _, itemId := range itemIds {
		row, ok := index.ToNumber(itemId)
		if !ok {
			LookupMissTotalVec.WithLabelValues("history").Inc()
			continue
		}
		if seen.Add(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

// ResolveCandidates converts candidate item IDs to rows. Missing items become base.NotId
// so that the output stays aligned with the input.
func ResolveCandidates(index *base.Index, itemIds []string) []int32 {
	rows := make([]int32, len(itemIds))
	for i, itemId := range itemIds {
		row, ok := index.ToNumber(itemId)
		if !ok {
			LookupMissTotalVec.WithLabelValues("candidate").Inc()
		}
		rows[i] = row
	}
	return rows
}

// SumRows returns the sum of rows of features. No rows give a zero vector.
func SumRows(features mat.Matrix, rows []int32) []float64 {
	_, cols := features.Dims()
	profile := make([]float64, cols)
	for _, row := range rows {
		for j := range profile {
			profile[j] += features.At(int(row), j)
		}
	}
	return profile
}
