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
	"encoding/binary"
	"io"
	"sort"

	"github.com/gorse-io/reviewsim/base"
	"github.com/gorse-io/reviewsim/base/encoding"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"
)

// SnapshotVersion is the version of the snapshot format.
const SnapshotVersion int32 = 1

// Snapshot is the fitted state of a predictor. It must not be modified once a predictor
// has been created from it.
type Snapshot struct {
	Algorithm string
	Items     *base.Index
	Features  *mat.Dense
	History   map[string][]string
}

func (s *Snapshot) validate() error {
	if s.Items == nil || s.Features == nil {
		return errors.NotValidf("empty snapshot")
	}
	rows, _ := s.Features.Dims()
	if rows != int(s.Items.Len()) {
		return errors.NotValidf("%d feature rows for %d items", rows, s.Items.Len())
	}
	return nil
}

// Marshal writes the snapshot to byte stream. Item similarities are not written since
// they are rebuilt from features.
func (s *Snapshot) Marshal(w io.Writer) error {
	// write version
	if err := binary.Write(w, binary.LittleEndian, SnapshotVersion); err != nil {
		return errors.Trace(err)
	}
	// write algorithm
	if err := encoding.WriteString(w, s.Algorithm); err != nil {
		return errors.Trace(err)
	}
	// write item index
	if err := base.MarshalIndex(w, s.Items); err != nil {
		return errors.Trace(err)
	}
	// write features
	rows, cols := s.Features.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, s.Features.RawRowView(i)...)
	}
	if err := encoding.WriteMatrix(w, rows, cols, data); err != nil {
		return errors.Trace(err)
	}
	// write history
	users := make([]string, 0, len(s.History))
	for userId := range s.History {
		users = append(users, userId)
	}
	sort.Strings(users)
	if err := encoding.WriteStrings(w, users); err != nil {
		return errors.Trace(err)
	}
	for _, userId := range users {
		if err := encoding.WriteStrings(w, s.History[userId]); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// UnmarshalSnapshot reads a snapshot from byte stream.
func UnmarshalSnapshot(r io.Reader) (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	// read version
	var version int32
	if err = binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Trace(err)
	}
	if version != SnapshotVersion {
		return nil, errors.NotSupportedf("snapshot version %d", version)
	}
	// read algorithm
	if s.Algorithm, err = encoding.ReadString(r); err != nil {
		return nil, errors.Trace(err)
	}
	// read item index
	if s.Items, err = base.UnmarshalIndex(r); err != nil {
		return nil, errors.Trace(err)
	}
	// read features
	rows, cols, data, err := encoding.ReadMatrix(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if rows == 0 || cols == 0 {
		return nil, errors.NotValidf("features of shape %dx%d", rows, cols)
	}
	s.Features = mat.NewDense(rows, cols, data)
	// read history
	users, err := encoding.ReadStrings(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s.History = make(map[string][]string, len(users))
	for _, userId := range users {
		if s.History[userId], err = encoding.ReadStrings(r); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if err = s.validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &s, nil
}
