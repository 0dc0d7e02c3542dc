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

import "github.com/pkg/errors"

// next consumes the word at PC.
func (i *Instance) next() (Cell, error) {
	v, err := i.load(Cell(i.PC))
	if err != nil {
		return 0, err
	}
	i.PC++
	return v, nil
}

// read consumes an operand and resolves its value according to mode m.
func (i *Instance) read(m Mode) (Cell, error) {
	w, err := i.next()
	if err != nil {
		return 0, err
	}
	switch m {
	case Immediate:
		return w, nil
	case Position:
		return i.load(w)
	case Relative:
		return i.load(w + i.base)
	}
	return 0, errors.Wrapf(ErrInvalidMode, "mode %d", m)
}

// write consumes an operand, resolves it to an address according to mode m
// and stores v there.
func (i *Instance) write(m Mode, v Cell) error {
	w, err := i.next()
	if err != nil {
		return err
	}
	switch m {
	case Position:
		return i.store(w, v)
	case Relative:
		return i.store(w+i.base, v)
	case Immediate:
		return ErrImmediateWrite
	}
	return errors.Wrapf(ErrInvalidMode, "mode %d", m)
}

// binary reads two operands, applies f and writes the result to the third.
func (i *Instance) binary(in *Instruction, f func(a, b Cell) Cell) error {
	a, err := i.read(in.Modes[0])
	if err != nil {
		return err
	}
	b, err := i.read(in.Modes[1])
	if err != nil {
		return err
	}
	return i.write(in.Modes[2], f(a, b))
}

// jump reads a condition and a target and sets PC to target if cond(a) holds.
func (i *Instance) jump(in *Instruction, cond bool) error {
	a, err := i.read(in.Modes[0])
	if err != nil {
		return err
	}
	t, err := i.read(in.Modes[1])
	if err != nil {
		return err
	}
	if (a != 0) == cond {
		pc, err := address(t)
		if err != nil {
			return errors.Wrap(err, "jump target")
		}
		i.PC = pc
	}
	return nil
}

func (i *Instance) in(in *Instruction) error {
	if i.input == nil {
		return errors.Wrap(ErrRead, "no input")
	}
	v, err := i.input.Recv()
	if err != nil {
		return errors.Wrap(ErrRead, err.Error())
	}
	return i.write(in.Modes[0], v)
}

func (i *Instance) out(in *Instruction) error {
	v, err := i.read(in.Modes[0])
	if err != nil {
		return err
	}
	if i.output == nil {
		return errors.Wrap(ErrWrite, "no output")
	}
	if err = i.output.Send(v); err != nil {
		return errors.Wrap(ErrWrite, err.Error())
	}
	return nil
}

func boolCell(b bool) Cell {
	if b {
		return 1
	}
	return 0
}

func add(a, b Cell) Cell      { return a + b }
func mul(a, b Cell) Cell      { return a * b }
func lessThan(a, b Cell) Cell { return boolCell(a < b) }
func equals(a, b Cell) Cell   { return boolCell(a == b) }
