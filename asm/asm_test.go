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

package asm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		code string
		want vm.Image
	}{
		{"add", "add 0 0 0 hlt", vm.Image{1, 0, 0, 0, 99}},
		{"modes", "mul 4 #3 4 .dat 33", vm.Image{1002, 4, 3, 4, 33}},
		{"relative", "arb #19 out @-34 hlt", vm.Image{109, 19, 204, -34, 99}},
		{"io", "in 0 out 0 hlt", vm.Image{3, 0, 4, 0, 99}},
		{"labels", "jt #1 #end .dat 7 7 :end hlt", vm.Image{1105, 1, 5, 7, 7, 99}},
		{"forward and backward", ":a jf #0 #b :b jt #1 #a", vm.Image{1106, 0, 3, 1105, 1, 0}},
		{"org", "hlt .org 4 42", vm.Image{99, 0, 0, 0, 42}},
		{"char", "out #'A'", vm.Image{104, 65}},
		{"comment", "( nothing to see ) hlt ( here )", vm.Image{99}},
		{"equ", ".equ SIZE 16 lt 100 #SIZE 101", vm.Image{1007, 100, 16, 101}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img, err := asm.Assemble(test.name, strings.NewReader(test.code))
			require.NoError(t, err)
			assert.Equal(t, test.want, img)
		})
	}
}

// check some errors. We're not checking the messages, rather that they point at
// the correct place.
func TestAssemble_errors(t *testing.T) {
	code := `
	add 1 2 #3
	jt #1 nowhere
	.zoo
	out
`
	_, err := asm.Assemble("test_errors", strings.NewReader(code))
	require.Error(t, err)
	errs, ok := err.(asm.ErrAsm)
	require.True(t, ok, "error type %T", err)
	require.Len(t, errs, 4)

	expect := []struct {
		line int
		msg  string
	}{
		{5, "missing operand for out"},
		{2, "immediate mode write target"},
		{4, "unknown dot directive"},
		{3, "undefined label nowhere"},
	}
	// sort by message prefix rather than rely on reporting order
	for _, x := range expect {
		found := false
		for _, e := range errs {
			if strings.HasPrefix(e.Msg, x.msg) {
				assert.Equal(t, x.line, e.Pos.Line, x.msg)
				found = true
			}
		}
		assert.True(t, found, "no error %q in %v", x.msg, errs)
	}
}

func TestAssemble_tooManyErrors(t *testing.T) {
	code := strings.Repeat(".bad ", 20)
	_, err := asm.Assemble("many", strings.NewReader(code))
	require.Error(t, err)
	assert.Len(t, err.(asm.ErrAsm), 10)
}

func TestDisassemble(t *testing.T) {
	img := vm.Image{1002, 4, 3, 4, 33, 7, 1}
	var b bytes.Buffer

	next, err := asm.Disassemble(img, 0, &b)
	require.NoError(t, err)
	assert.Equal(t, 4, next)
	assert.Equal(t, "mul 4 #3 4", b.String())

	b.Reset()
	next, err = asm.Disassemble(img, 4, &b)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
	assert.Equal(t, ".dat 33", b.String())

	// truncated instruction
	b.Reset()
	next, err = asm.Disassemble(img, 5, &b)
	require.NoError(t, err)
	assert.Equal(t, 7, next)
	assert.Equal(t, "lt 1 ??? ???", b.String())
}

// A listing produced by the disassembler assembles back to the same image.
func TestDisassemble_roundTrip(t *testing.T) {
	quine := vm.Image{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}
	var src bytes.Buffer
	for pc := 0; pc < len(quine); {
		var err error
		pc, err = asm.Disassemble(quine, pc, &src)
		require.NoError(t, err)
		src.WriteByte('\n')
	}
	img, err := asm.Assemble("quine", &src)
	require.NoError(t, err)
	assert.Equal(t, quine, img)
}
