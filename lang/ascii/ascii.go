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

// Package ascii implements the conventions used by Intcode programs that talk
// in text: input lines are sent as character codes terminated by a newline,
// and output values below 128 are characters. Any other output value, usually
// a single large number at the end of the run, is a numeric answer.
package ascii

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/db47h/intcode/internal/ici"
	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
)

// MaxChar is the largest output value treated as text.
const MaxChar = 127

// IsChar reports whether v is an ASCII character code.
func IsChar(v vm.Cell) bool {
	return v >= 0 && v <= MaxChar
}

// Encode returns the character codes of line, terminated by a newline. A
// newline is appended only if line does not already end with one.
func Encode(line string) []vm.Cell {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	cells := make([]vm.Cell, 0, len(line))
	for _, r := range line {
		cells = append(cells, vm.Cell(r))
	}
	return cells
}

// Send encodes each line and sends it to out.
func Send(out vm.OutPort, lines ...string) error {
	for _, l := range lines {
		for _, c := range Encode(l) {
			if err := out.Send(c); err != nil {
				return errors.Wrapf(err, "sending %q", l)
			}
		}
	}
	return nil
}

// Decode splits program output into text and non-ASCII values.
func Decode(cells []vm.Cell) (text string, values []vm.Cell) {
	var b strings.Builder
	for _, c := range cells {
		if IsChar(c) {
			b.WriteByte(byte(c))
			continue
		}
		values = append(values, c)
	}
	return b.String(), values
}

// Writer is a vm.OutPort that writes ASCII output to an io.Writer and records
// any other value. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	w      *ici.ErrWriter
	values []vm.Cell
}

// NewWriter returns a new Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: ici.NewErrWriter(w)}
}

// Send implements vm.OutPort. Write errors are sticky.
func (w *Writer) Send(v vm.Cell) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !IsChar(v) {
		w.values = append(w.values, v)
		return nil
	}
	w.w.Write([]byte{byte(v)})
	return w.w.Err
}

// Values returns a copy of the non-ASCII values sent so far.
func (w *Writer) Values() []vm.Cell {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]vm.Cell(nil), w.values...)
}

// Reader is a vm.InPort that reads characters from an io.Reader, one byte per
// value. Once the reader is exhausted, Recv fails with vm.ErrClosed.
type Reader struct {
	r *bufio.Reader
}

// NewReader returns a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{bufio.NewReader(r)}
}

// Recv implements vm.InPort. Carriage returns are skipped so that input typed
// on a terminal in raw mode or on Windows ends lines with a single newline.
func (r *Reader) Recv() (vm.Cell, error) {
	for {
		b, err := r.r.ReadByte()
		if err == io.EOF {
			return 0, vm.ErrClosed
		}
		if err != nil {
			return 0, errors.Wrap(err, "read failed")
		}
		if b != '\r' {
			return vm.Cell(b), nil
		}
	}
}
