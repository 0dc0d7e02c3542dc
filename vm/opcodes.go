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
	"strconv"

	"github.com/pkg/errors"
)

// Opcode is the instruction tag stored in the two low decimal digits of an
// instruction word.
type Opcode Cell

// Intcode opcodes.
const (
	OpAdd         Opcode = 1
	OpMul         Opcode = 2
	OpIn          Opcode = 3
	OpOut         Opcode = 4
	OpJumpIfTrue  Opcode = 5
	OpJumpIfFalse Opcode = 6
	OpLessThan    Opcode = 7
	OpEquals      Opcode = 8
	OpAdjustBase  Opcode = 9
	OpHalt        Opcode = 99
)

// OpInfo describes an opcode: its assembler mnemonic, the number of operands
// it consumes and whether its last operand is a write target.
type OpInfo struct {
	Name     string
	Operands int
	Writes   bool
}

var opcodes = map[Opcode]OpInfo{
	OpAdd:         {"add", 3, true},
	OpMul:         {"mul", 3, true},
	OpIn:          {"in", 1, true},
	OpOut:         {"out", 1, false},
	OpJumpIfTrue:  {"jt", 2, false},
	OpJumpIfFalse: {"jf", 2, false},
	OpLessThan:    {"lt", 3, true},
	OpEquals:      {"eq", 3, true},
	OpAdjustBase:  {"arb", 1, false},
	OpHalt:        {"hlt", 0, false},
}

var opcodeIndex = make(map[string]Opcode, len(opcodes))

func init() {
	for op, info := range opcodes {
		opcodeIndex[info.Name] = op
	}
}

// Info returns the description of op. The boolean result is false if op is not
// a known opcode.
func (op Opcode) Info() (OpInfo, bool) {
	info, ok := opcodes[op]
	return info, ok
}

func (op Opcode) String() string {
	if info, ok := opcodes[op]; ok {
		return info.Name
	}
	return "op(" + strconv.FormatInt(int64(op), 10) + ")"
}

// LookupOpcode returns the opcode for the given mnemonic.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeIndex[name]
	return op, ok
}

// Mode is an operand addressing mode.
type Mode Cell

// Parameter modes.
const (
	Position  Mode = 0 // operand is an address
	Immediate Mode = 1 // operand is the value itself
	Relative  Mode = 2 // operand is an address relative to the relative base
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return "mode(" + strconv.FormatInt(int64(m), 10) + ")"
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Opcode
	Modes [3]Mode
}

// Decode splits an instruction word into its opcode and the modes of its three
// operand slots. All three modes are checked, even those the opcode does not
// use. Digits above the ten-thousands are ignored.
func Decode(word Cell) (Instruction, error) {
	var in Instruction
	if word < 0 {
		return in, errors.Wrapf(ErrInvalidOpcode, "negative instruction word %d", word)
	}
	in.Op = Opcode(word % 100)
	if _, ok := opcodes[in.Op]; !ok {
		return in, errors.Wrapf(ErrInvalidOpcode, "opcode %d", in.Op)
	}
	m := word / 100
	for k := range in.Modes {
		d := Mode(m % 10)
		if d > Relative {
			return in, errors.Wrapf(ErrInvalidMode, "mode %d for operand %d", d, k+1)
		}
		in.Modes[k] = d
		m /= 10
	}
	return in, nil
}

// Encode returns the instruction word for in. It is the inverse of Decode for
// valid instructions.
func (in Instruction) Encode() Cell {
	w := Cell(in.Op)
	for k, f := 0, Cell(100); k < len(in.Modes); k, f = k+1, f*10 {
		w += Cell(in.Modes[k]) * f
	}
	return w
}
