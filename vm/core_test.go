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

package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type C []vm.Cell

// runAsm assembles code, runs it with the given input and returns the instance
// and its output.
func runAsm(t *testing.T, name, code string, input ...vm.Cell) (*vm.Instance, C, error) {
	t.Helper()
	img, err := asm.Assemble(name, strings.NewReader(code))
	require.NoError(t, err)
	return runImage(t, img, input...)
}

func runImage(t *testing.T, img vm.Image, input ...vm.Cell) (*vm.Instance, C, error) {
	t.Helper()
	var out vm.Collector
	i, err := vm.New(vm.Program(img), vm.Input(vm.Values(input...)), vm.Output(&out))
	require.NoError(t, err)
	err = i.Run()
	return i, out.Values(), err
}

func peek(t *testing.T, i *vm.Instance, addr int) vm.Cell {
	t.Helper()
	v, err := i.Peek(addr)
	require.NoError(t, err)
	return v
}

var tests = [...]struct {
	name  string
	code  string
	input C
	out   C
	mem   map[int]vm.Cell // expected memory cells after halt
}{
	{"hlt", "hlt", nil, nil, nil},
	{"add", "add #2 #3 10 hlt", nil, nil, map[int]vm.Cell{10: 5}},
	{"add negative", "add #2 #-3 10 hlt", nil, nil, map[int]vm.Cell{10: -1}},
	{"add position", "add 5 6 7 hlt .dat 40 2", nil, nil, map[int]vm.Cell{7: 42}},
	{"mul", "mul #6 #7 10 hlt", nil, nil, map[int]vm.Cell{10: 42}},
	{"mul overflow", "mul #4294967296 #4294967296 10 hlt", nil, nil, map[int]vm.Cell{10: 0}},
	{"in", "in 10 in 11 hlt", C{4, -5}, nil, map[int]vm.Cell{10: 4, 11: -5}},
	{"out", "out #1 out #-1 out 0 hlt", nil, C{1, -1, 104}, nil},
	{"jt taken", "jt #1 #5 out #1 hlt", nil, nil, nil},
	{"jt not taken", "jt #0 #5 out #1 hlt", nil, C{1}, nil},
	{"jf taken", "jf #0 #5 out #1 hlt", nil, nil, nil},
	{"jf not taken", "jf #3 #5 out #1 hlt", nil, C{1}, nil},
	{"lt", "lt #1 #2 20 lt #2 #1 21 lt #-1 #-1 22 hlt", nil, nil, map[int]vm.Cell{20: 1, 21: 0, 22: 0}},
	{"eq", "eq #1 #2 20 eq #-7 #-7 21 hlt", nil, nil, map[int]vm.Cell{20: 0, 21: 1}},
	{"arb", "arb #10 arb #-3 add #1 #0 @0 hlt", nil, nil, map[int]vm.Cell{7: 1}},
	{"relative read", "arb #5 out @1 hlt .dat 0 99", nil, C{99}, nil},
	{"relative write", "arb #100 in @-50 hlt", C{8}, nil, map[int]vm.Cell{50: 8}},
	{"write grows memory", "add #1 #1 1000 hlt", nil, nil, map[int]vm.Cell{1000: 2, 999: 0}},
	{"unwritten reads zero", "out 5000 hlt", nil, C{0}, nil},
	{"self modifying", "add #99 #0 4 .dat 1", nil, nil, map[int]vm.Cell{4: 99}},
}

func TestCore(t *testing.T) {
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			i, out, err := runAsm(t, test.name, test.code, test.input...)
			if !assert.NoError(t, err) {
				var b bytes.Buffer
				asm.DisassembleAll(i.Memory(), 0, &b)
				t.Log("\n" + b.String())
				return
			}
			assert.Equal(t, vm.Halted, i.State())
			assert.Equal(t, test.out, out)
			for addr, v := range test.mem {
				assert.Equal(t, v, peek(t, i, addr), "mem[%d]", addr)
			}
		})
	}
}

var faults = [...]struct {
	name  string
	img   vm.Image
	cause error
	pc    int
}{
	{"unknown opcode", vm.Image{1, 0, 0, 0, 42}, vm.ErrInvalidOpcode, 4},
	{"opcode zero", vm.Image{0}, vm.ErrInvalidOpcode, 0},
	{"negative word", vm.Image{-1}, vm.ErrInvalidOpcode, 0},
	{"opcode in data", vm.Image{1106, 0, 4, 99, 42}, vm.ErrInvalidOpcode, 4},
	{"bad mode", vm.Image{301, 0, 0, 0, 99}, vm.ErrInvalidMode, 0},
	{"bad unused mode", vm.Image{30099}, vm.ErrInvalidMode, 0},
	{"immediate write", vm.Image{11101, 1, 1, 0, 99}, vm.ErrImmediateWrite, 0},
	{"negative read", vm.Image{4, -1, 99}, vm.ErrInvalidAddress, 0},
	{"negative relative read", vm.Image{109, -5, 204, 2, 99}, vm.ErrInvalidAddress, 2},
	{"negative write", vm.Image{1101, 1, 1, -3, 99}, vm.ErrInvalidAddress, 0},
	{"negative jump", vm.Image{1105, 1, -2, 99}, vm.ErrInvalidAddress, 0},
	{"no input", vm.Image{3, 0, 99}, vm.ErrRead, 0},
	{"run past end", vm.Image{1101, 0, 0, 0}, vm.ErrInvalidOpcode, 4},
}

func TestCore_faults(t *testing.T) {
	for _, test := range faults {
		t.Run(test.name, func(t *testing.T) {
			i, _, err := runImage(t, test.img)
			require.Error(t, err)
			assert.ErrorIs(t, err, test.cause)
			assert.Equal(t, vm.Faulted, i.State())
			assert.Equal(t, err, i.Err())

			f, ok := err.(*vm.Fault)
			require.True(t, ok, "error type %T", err)
			assert.Equal(t, test.pc, f.PC)
			assert.Equal(t, test.pc, i.PC)
		})
	}
}

func TestCore_noOutput(t *testing.T) {
	i, err := vm.New(vm.Program(vm.Image{104, 1, 99}))
	require.NoError(t, err)
	err = i.Run()
	assert.ErrorIs(t, err, vm.ErrWrite)
}

func TestDecode(t *testing.T) {
	in, err := vm.Decode(21201)
	require.NoError(t, err)
	assert.Equal(t, vm.OpAdd, in.Op)
	assert.Equal(t, [3]vm.Mode{vm.Relative, vm.Immediate, vm.Relative}, in.Modes)
	assert.Equal(t, vm.Cell(21201), in.Encode())

	in, err = vm.Decode(99)
	require.NoError(t, err)
	assert.Equal(t, vm.OpHalt, in.Op)
	assert.Equal(t, [3]vm.Mode{}, in.Modes)

	for _, w := range []vm.Cell{0, 10, 98, 100, -1} {
		_, err = vm.Decode(w)
		assert.ErrorIs(t, err, vm.ErrInvalidOpcode, "word %d", w)
	}
	for _, w := range []vm.Cell{301, 3001, 30001, 901} {
		_, err = vm.Decode(w)
		assert.ErrorIs(t, err, vm.ErrInvalidMode, "word %d", w)
	}
}

func TestOpcode_String(t *testing.T) {
	assert.Equal(t, "arb", vm.OpAdjustBase.String())
	assert.Equal(t, "op(42)", vm.Opcode(42).String())
	op, ok := vm.LookupOpcode("jf")
	assert.True(t, ok)
	assert.Equal(t, vm.OpJumpIfFalse, op)
	info, ok := vm.OpMul.Info()
	assert.True(t, ok)
	assert.Equal(t, vm.OpInfo{Name: "mul", Operands: 3, Writes: true}, info)
}
