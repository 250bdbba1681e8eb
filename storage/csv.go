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

package storage

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/gorse-io/reviewsim/dataset"
	"github.com/juju/errors"
)

var csvHeader = []string{"user", "item", "review"}

// CSV is a review source backed by a comma separated file with the header user,item,review.
// An empty review field means the record has no text.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Init writes the header if the file does not exist.
func (c *CSV) Init() error {
	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Trace(err)
	}
	file, err := os.Create(c.path)
	if err != nil {
		return errors.Trace(err)
	}
	w := csv.NewWriter(file)
	if err = w.Write(csvHeader); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	w.Flush()
	if err = w.Error(); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return file.Close()
}

func (c *CSV) Close() error {
	return nil
}

func (c *CSV) LoadReviews(ctx context.Context) ([]dataset.Review, error) {
	file, err := os.Open(c.path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	for i, column := range csvHeader {
		if header[i] != column {
			return nil, errors.NotValidf("csv header %v", header)
		}
	}
	var reviews []dataset.Review
	for {
		if err = ctx.Err(); err != nil {
			return nil, errors.Trace(err)
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		review := dataset.Review{UserId: record[0], ItemId: record[1]}
		if record[2] != "" {
			text := record[2]
			review.Text = &text
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func (c *CSV) BatchInsertReviews(_ context.Context, reviews []dataset.Review) error {
	file, err := os.OpenFile(c.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Trace(err)
	}
	w := csv.NewWriter(file)
	for _, review := range reviews {
		text := ""
		if review.Text != nil {
			text = *review.Text
		}
		if err = w.Write([]string{review.UserId, review.ItemId, text}); err != nil {
			_ = file.Close()
			return errors.Trace(err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		_ = file.Close()
		return errors.Trace(err)
	}
	return file.Close()
}
