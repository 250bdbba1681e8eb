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

package encoding

import (
	"encoding/binary"
	"io"

	"github.com/juju/errors"
)

// WriteMatrix writes a row-major matrix with its shape to byte stream.
func WriteMatrix(w io.Writer, rows, cols int, data []float64) error {
	if len(data) != rows*cols {
		return errors.Errorf("matrix data length %d does not match shape %dx%d", len(data), rows, cols)
	}
	if err := binary.Write(w, binary.LittleEndian, [2]int32{int32(rows), int32(cols)}); err != nil {
		return errors.Trace(err)
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// ReadMatrix reads a row-major matrix and its shape from byte stream.
func ReadMatrix(r io.Reader) (rows, cols int, data []float64, err error) {
	var shape [2]int32
	if err = binary.Read(r, binary.LittleEndian, &shape); err != nil {
		return 0, 0, nil, errors.Trace(err)
	}
	if shape[0] < 0 || shape[1] < 0 {
		return 0, 0, nil, errors.Errorf("invalid matrix shape %dx%d", shape[0], shape[1])
	}
	rows, cols = int(shape[0]), int(shape[1])
	data = make([]float64, rows*cols)
	if err = binary.Read(r, binary.LittleEndian, data); err != nil {
		return 0, 0, nil, errors.Trace(err)
	}
	return rows, cols, data, nil
}

// WriteString writes string to byte stream.
func WriteString(w io.Writer, s string) error {
	return writeBytes(w, []byte(s))
}

// ReadString reads string from byte stream.
func ReadString(r io.Reader) (string, error) {
	data, err := readBytes(r)
	return string(data), err
}

// WriteStrings writes a list of strings to byte stream.
func WriteStrings(w io.Writer, a []string) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(a))); err != nil {
		return errors.Trace(err)
	}
	for _, s := range a {
		if err := WriteString(w, s); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ReadStrings reads a list of strings from byte stream.
func ReadStrings(r io.Reader) ([]string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, errors.Trace(err)
	}
	if n < 0 {
		return nil, errors.Errorf("invalid string list length %d", n)
	}
	a := make([]string, n)
	for i := range a {
		s, err := ReadString(r)
		if err != nil {
			return nil, errors.Trace(err)
		}
		a[i] = s
	}
	return a, nil
}

// writeBytes writes length-prefixed bytes to byte stream.
func writeBytes(w io.Writer, s []byte) error {
	err := binary.Write(w, binary.LittleEndian, int32(len(s)))
	if err != nil {
		return err
	}
	n, err := w.Write(s)
	if err != nil {
		return err
	} else if n != len(s) {
		return errors.New("fail to write string")
	}
	return nil
}

// readBytes reads length-prefixed bytes from byte stream.
func readBytes(r io.Reader) ([]byte, error) {
	var length int32
	err := binary.Read(r, binary.LittleEndian, &length)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.New("fail to read string")
	}
	data := make([]byte, length)
	if _, err = io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
