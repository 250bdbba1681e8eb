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
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gorse-io/reviewsim/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// DefaultSeparator joins the reviews of an item.
const DefaultSeparator = " "

// Review is a raw review record. A nil Text means the user interacted with the item
// without writing a review.
type Review struct {
	UserId string  `json:"user_id" bson:"user_id"`
	ItemId string  `json:"item_id" bson:"item_id"`
	Text   *string `json:"review" bson:"review"`
}

// NewReview creates a review with text.
func NewReview(userId, itemId, text string) Review {
	return Review{UserId: userId, ItemId: itemId, Text: &text}
}

// ReviewEnv is the environment of review filter expressions.
type ReviewEnv struct {
	UserId string
	ItemId string
	Text   string
}

// CompileFilter compiles a boolean expression over `review`, e.g. `len(review.Text) > 10`.
// An empty expression returns nil, which accepts every review.
func CompileFilter(filter string) (*vm.Program, error) {
	if filter == "" {
		return nil, nil
	}
	program, err := expr.Compile(filter, expr.Env(map[string]any{
		"review": ReviewEnv{},
	}), expr.AsBool())
	if err != nil {
		return nil, errors.NewNotValid(err, "review filter")
	}
	return program, nil
}

// AggregateOptions controls how reviews are grouped into item documents.
type AggregateOptions struct {
	// Separator joins review texts of an item. Empty means DefaultSeparator.
	Separator string
	// Filter drops reviews from item documents when it evaluates to false.
	Filter *vm.Program
}

// Corpus is the result of aggregation. Documents are ordered by ascending item ID and
// the item index maps each item ID to the position of its document.
type Corpus struct {
	items     *base.Index
	documents []string
	history   map[string][]string
}

// Aggregate groups reviews by item. Reviews without text are dropped from the documents
// but still count towards user history. Texts of an item are joined in the order reviews
// were supplied; documents are sorted by item ID (byte order).
func Aggregate(reviews []Review, opts AggregateOptions) (*Corpus, error) {
	separator := opts.Separator
	if separator == "" {
		separator = DefaultSeparator
	}
	texts := make(map[string][]string)
	history := make(map[string][]string)
	for _, review := range reviews {
		history[review.UserId] = append(history[review.UserId], review.ItemId)
		if review.Text == nil {
			continue
		}
		if opts.Filter != nil {
			accepted, err := expr.Run(opts.Filter, map[string]any{
				"review": ReviewEnv{UserId: review.UserId, ItemId: review.ItemId, Text: *review.Text},
			})
			if err != nil {
				return nil, errors.Annotatef(err, "evaluate review filter on item %s", review.ItemId)
			}
			if !accepted.(bool) {
				continue
			}
		}
		texts[review.ItemId] = append(texts[review.ItemId], *review.Text)
	}
	if len(texts) == 0 {
		return nil, errors.NotValidf("empty corpus")
	}
	itemIds := lo.Keys(texts)
	sort.Strings(itemIds)
	corpus := &Corpus{
		items:     base.NewMapIndex(),
		documents: make([]string, len(itemIds)),
		history:   make(map[string][]string, len(history)),
	}
	for i, itemId := range itemIds {
		corpus.items.Add(itemId)
		corpus.documents[i] = strings.Join(texts[itemId], separator)
	}
	for userId, items := range history {
		corpus.history[userId] = lo.Uniq(items)
	}
	return corpus, nil
}

// Items returns the item index.
func (c *Corpus) Items() *base.Index {
	return c.items
}

// Documents returns item documents in index order.
func (c *Corpus) Documents() []string {
	return c.documents
}

// History returns distinct items reviewed by each user in first-seen order.
func (c *Corpus) History() map[string][]string {
	return c.history
}

// CountItems returns the number of documents.
func (c *Corpus) CountItems() int {
	return len(c.documents)
}

// CountUsers returns the number of users with history.
func (c *Corpus) CountUsers() int {
	return len(c.history)
}
