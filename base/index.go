// Copyright 2020 gorse Project Authors
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

package base

import (
	"encoding/binary"
	"io"

	"github.com/gorse-io/reviewsim/base/encoding"
	"github.com/juju/errors"
)

// MarshalIndex marshal index into byte stream.
func MarshalIndex(w io.Writer, index *Index) error {
	return index.Marshal(w)
}

// UnmarshalIndex unmarshal index from byte stream.
func UnmarshalIndex(r io.Reader) (*Index, error) {
	index := NewMapIndex()
	err := index.Unmarshal(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return index, nil
}

// Index manages the map between sparse names and dense indices. A sparse name is
// an item ID. The dense index is the row of the item in a feature matrix.
//
// An Index is filled once while a corpus is aggregated and must not be modified
// after it has been handed to a fitted model.
type Index struct {
	numbers map[string]int32 // sparse ID -> dense index
	names   []string         // dense index -> sparse ID
}

// NotId represents an ID doesn't exist.
const NotId = int32(-1)

// NewMapIndex creates a Index.
func NewMapIndex() *Index {
	return &Index{
		numbers: make(map[string]int32),
		names:   make([]string, 0),
	}
}

// Len returns the number of indexed names.
func (idx *Index) Len() int32 {
	if idx == nil {
		return 0
	}
	return int32(len(idx.names))
}

// Add adds a new ID to the indexer.
func (idx *Index) Add(name string) {
	if _, exist := idx.numbers[name]; !exist {
		idx.numbers[name] = int32(len(idx.names))
		idx.names = append(idx.names, name)
	}
}

// ToNumber converts a sparse ID to a dense index. The second return value
// reports whether the ID exists.
func (idx *Index) ToNumber(name string) (int32, bool) {
	if idx == nil {
		return NotId, false
	}
	if denseId, exist := idx.numbers[name]; exist {
		return denseId, true
	}
	return NotId, false
}

// ToName converts a dense index to a sparse ID.
func (idx *Index) ToName(index int32) string {
	return idx.names[index]
}

// GetNames returns all names in current index.
func (idx *Index) GetNames() []string {
	return idx.names
}

// Marshal map index into byte stream.
func (idx *Index) Marshal(w io.Writer) error {
	// write length
	err := binary.Write(w, binary.LittleEndian, int32(len(idx.names)))
	if err != nil {
		return errors.Trace(err)
	}
	// write names
	for _, s := range idx.names {
		err = encoding.WriteString(w, s)
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Unmarshal map index from byte stream.
func (idx *Index) Unmarshal(r io.Reader) error {
	// read length
	var n int32
	err := binary.Read(r, binary.LittleEndian, &n)
	if err != nil {
		return errors.Trace(err)
	}
	// read names
	idx.names = make([]string, 0, n)
	idx.numbers = make(map[string]int32, n)
	for i := 0; i < int(n); i++ {
		name, err := encoding.ReadString(r)
		if err != nil {
			return errors.Trace(err)
		}
		idx.Add(name)
	}
	if idx.Len() != n {
		return errors.Errorf("duplicate names in index stream")
	}
	return nil
}
