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

package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/db47h/intcode/internal/ici"
	"github.com/db47h/intcode/vm"
)

// AsmError is a single assembly error at a given position in the source.
type AsmError struct {
	Pos scanner.Position
	Msg string
}

func (e AsmError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// ErrAsm is the error returned by Assemble. It lists up to maxErrors errors
// in order of appearance.
type ErrAsm []AsmError

func (e ErrAsm) Error() string {
	var b strings.Builder
	for k, err := range e {
		if k > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting image and error if any.
//
// Then name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value that
// will contain up to 10 entries.
func Assemble(name string, r io.Reader) (img vm.Image, err error) {
	p := newParser()
	if err = p.Parse(name, r); err != nil {
		return nil, err
	}
	return p.img[:p.size], nil
}

func operand(in vm.Instruction, k int, v vm.Cell) string {
	s := strconv.FormatInt(int64(v), 10)
	switch in.Modes[k] {
	case vm.Immediate:
		return "#" + s
	case vm.Relative:
		return "@" + s
	}
	return s
}

// Disassemble writes a disassembly of the cells in the given slice at position
// pc to the specified io.Writer and returns the position of the next
// instruction and any write error.
//
// Words that do not decode to a valid instruction are written as a .dat
// directive.
func Disassemble(img []vm.Cell, pc int, w io.Writer) (next int, err error) {
	ew := ici.NewErrWriter(w)

	in, err := vm.Decode(img[pc])
	if err != nil {
		io.WriteString(ew, ".dat ")
		io.WriteString(ew, strconv.FormatInt(int64(img[pc]), 10))
		return pc + 1, ew.Err
	}
	info, _ := in.Op.Info()
	io.WriteString(ew, info.Name)
	pc++
	for k := 0; k < info.Operands; k++ {
		ew.Write([]byte{' '})
		if pc >= len(img) {
			io.WriteString(ew, "???")
			continue
		}
		io.WriteString(ew, operand(in, k, img[pc]))
		pc++
	}
	return pc, ew.Err
}

// DisassembleAll writes a disassembly of all cells in the given slice to
// the specified io.Writer. The base argument specifies the real address of the
// first cell (i[0]). It will return any write error.
func DisassembleAll(img []vm.Cell, base int, w io.Writer) error {
	ew := ici.NewErrWriter(w)
	for pc := 0; pc < len(img); {
		fmt.Fprintf(ew, "% 10d\t", base+pc)
		pc, _ = Disassemble(img, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
