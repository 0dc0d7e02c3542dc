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

// grow zero-extends memory so that addr is a valid index.
func (i *Instance) grow(addr int) {
	if addr < len(i.mem) {
		return
	}
	if addr < cap(i.mem) {
		n := len(i.mem)
		i.mem = i.mem[:addr+1]
		clear(i.mem[n:])
		return
	}
	i.mem = append(i.mem, make(Image, addr+1-len(i.mem))...)
}

// address checks and converts a resolved address.
func address(a Cell) (int, error) {
	if a < 0 || Cell(int(a)) != a {
		return 0, errors.Wrapf(ErrInvalidAddress, "address %d", a)
	}
	return int(a), nil
}

func (i *Instance) load(a Cell) (Cell, error) {
	addr, err := address(a)
	if err != nil {
		return 0, err
	}
	if addr >= len(i.mem) {
		i.grow(addr)
	}
	return i.mem[addr], nil
}

func (i *Instance) store(a Cell, v Cell) error {
	addr, err := address(a)
	if err != nil {
		return err
	}
	if addr >= len(i.mem) {
		i.grow(addr)
	}
	i.mem[addr] = v
	return nil
}

// Memory returns a snapshot of the machine's memory. Changes to the returned
// Image do not affect the machine.
func (i *Instance) Memory() Image {
	return i.mem.Clone()
}

// Peek returns the value at address addr. Like any memory access made by a
// running program, it extends memory up to addr if needed.
func (i *Instance) Peek(addr int) (Cell, error) {
	return i.load(Cell(addr))
}

// Poke stores v at address addr, extending memory if needed. This is the way
// to patch a loaded program before running it.
func (i *Instance) Poke(addr int, v Cell) error {
	return i.store(Cell(addr), v)
}
