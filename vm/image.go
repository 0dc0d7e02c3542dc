// This file is part of intcode - https://github.com/db47h/intcode
//
// Copyright 2019 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/db47h/intcode/internal/ici"
	"github.com/pkg/errors"
)

// Image is a memory image: the program as loaded, or a snapshot of a
// machine's memory.
type Image []Cell

// Parse parses a program in text form: a single line of comma separated
// decimal integers. Leading and trailing white space is ignored, and so is
// white space around each value.
func Parse(text string) (Image, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Wrap(ErrParse, "empty program")
	}
	fields := strings.Split(text, ",")
	img := make(Image, len(fields))
	for k, f := range fields {
		n, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "value %d: %v", k, err)
		}
		img[k] = Cell(n)
	}
	return img, nil
}

// ReadImage reads and parses a program from r.
func ReadImage(r io.Reader) (Image, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read failed")
	}
	return Parse(string(b))
}

// LoadFile loads a program from file fileName.
func LoadFile(fileName string) (Image, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	img, err := ReadImage(f)
	if err != nil {
		return nil, errors.Wrap(err, fileName)
	}
	return img, nil
}

// Clone returns a copy of img.
func (img Image) Clone() Image {
	if img == nil {
		return nil
	}
	return append(Image(nil), img...)
}

// WriteTo writes img to w in the format accepted by Parse, without a trailing
// newline.
func (img Image) WriteTo(w io.Writer) (int64, error) {
	ew := ici.NewErrWriter(w)
	var n int64
	for k, v := range img {
		if k > 0 {
			m, _ := ew.Write([]byte{','})
			n += int64(m)
		}
		m, _ := io.WriteString(ew, strconv.FormatInt(int64(v), 10))
		n += int64(m)
		if ew.Err != nil {
			break
		}
	}
	return n, ew.Err
}

func (img Image) String() string {
	var b bytes.Buffer
	img.WriteTo(&b)
	return b.String()
}
