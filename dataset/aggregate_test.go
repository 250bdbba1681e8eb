// Copyright 2025 gorse Project Authors
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

package dataset

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	reviews := []Review{
		NewReview("u1", "i2", "camera quality"),
		NewReview("u2", "i1", "great camera"),
		{UserId: "u2", ItemId: "i3"},
		NewReview("u1", "i2", "poor"),
		NewReview("u3", "i1", "fast"),
		NewReview("u1", "i1", "again"),
	}
	corpus, err := Aggregate(reviews, AggregateOptions{})
	require.NoError(t, err)
	// i3 has no text and is dropped from documents
	assert.Equal(t, 2, corpus.CountItems())
	assert.Equal(t, []string{"i1", "i2"}, corpus.Items().GetNames())
	assert.Equal(t, []string{"great camera fast again", "camera quality poor"}, corpus.Documents())
	// every document is at the row of its item
	for i, name := range corpus.Items().GetNames() {
		row, ok := corpus.Items().ToNumber(name)
		assert.True(t, ok)
		assert.Equal(t, int32(i), row)
	}
	_, ok := corpus.Items().ToNumber("i3")
	assert.False(t, ok)
	// history comes from raw records
	assert.Equal(t, 3, corpus.CountUsers())
	assert.Equal(t, []string{"i2", "i1"}, corpus.History()["u1"])
	assert.Equal(t, []string{"i1", "i3"}, corpus.History()["u2"])
	assert.Equal(t, []string{"i1"}, corpus.History()["u3"])
}

func TestAggregateOrderIndependentGrouping(t *testing.T) {
	a, err := Aggregate([]Review{
		NewReview("u1", "b", "x"),
		NewReview("u1", "a", "y"),
		NewReview("u1", "c", "z"),
	}, AggregateOptions{Separator: "|"})
	require.NoError(t, err)
	b, err := Aggregate([]Review{
		NewReview("u1", "c", "z"),
		NewReview("u1", "a", "y"),
		NewReview("u1", "b", "x"),
	}, AggregateOptions{Separator: "|"})
	require.NoError(t, err)
	assert.Equal(t, a.Items().GetNames(), b.Items().GetNames())
	assert.Equal(t, a.Documents(), b.Documents())
}

func TestAggregateSeparator(t *testing.T) {
	corpus, err := Aggregate([]Review{
		NewReview("u1", "a", "x"),
		NewReview("u2", "a", "y"),
	}, AggregateOptions{Separator: "\n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x\ny"}, corpus.Documents())
}

func TestAggregateEmpty(t *testing.T) {
	_, err := Aggregate(nil, AggregateOptions{})
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = Aggregate([]Review{{UserId: "u1", ItemId: "i1"}}, AggregateOptions{})
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestAggregateFilter(t *testing.T) {
	filter, err := CompileFilter(`len(review.Text) > 3 && review.UserId != "spam"`)
	require.NoError(t, err)
	corpus, err := Aggregate([]Review{
		NewReview("u1", "a", "ok"),
		NewReview("u1", "a", "lovely"),
		NewReview("spam", "b", "buy now"),
		NewReview("u2", "c", "nice shoes"),
	}, AggregateOptions{Filter: filter})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, corpus.Items().GetNames())
	assert.Equal(t, []string{"lovely", "nice shoes"}, corpus.Documents())
	// filtered reviews stay in history
	assert.Equal(t, []string{"b"}, corpus.History()["spam"])
}

func TestCompileFilter(t *testing.T) {
	program, err := CompileFilter("")
	assert.NoError(t, err)
	assert.Nil(t, program)
	_, err = CompileFilter("review.Rating > 3")
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = CompileFilter("review.Text")
	assert.True(t, errors.Is(err, errors.NotValid))
}
