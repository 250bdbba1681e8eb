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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapIndex(t *testing.T) {
	// Null indexer
	var index *Index
	assert.Zero(t, index.Len())
	_, ok := index.ToNumber("1")
	assert.False(t, ok)
	// Create a indexer
	index = NewMapIndex()
	assert.Zero(t, index.Len())
	// Add Names
	index.Add("1")
	index.Add("2")
	index.Add("4")
	index.Add("8")
	index.Add("2")
	assert.Equal(t, int32(4), index.Len())
	for i, name := range []string{"1", "2", "4", "8"} {
		number, ok := index.ToNumber(name)
		assert.True(t, ok)
		assert.Equal(t, int32(i), number)
		assert.Equal(t, name, index.ToName(number))
	}
	number, ok := index.ToNumber("1000")
	assert.False(t, ok)
	assert.Equal(t, NotId, number)
	// Get names
	assert.Equal(t, []string{"1", "2", "4", "8"}, index.GetNames())
	// Encode and decode
	buf := bytes.NewBuffer(nil)
	err := MarshalIndex(buf, index)
	assert.NoError(t, err)
	indexCopy, err := UnmarshalIndex(buf)
	assert.NoError(t, err)
	assert.Equal(t, index, indexCopy)
}

func TestUnmarshalIndexTruncated(t *testing.T) {
	index := NewMapIndex()
	index.Add("a")
	index.Add("b")
	buf := bytes.NewBuffer(nil)
	assert.NoError(t, index.Marshal(buf))
	data := buf.Bytes()
	_, err := UnmarshalIndex(bytes.NewReader(data[:len(data)-1]))
	assert.Error(t, err)
}
