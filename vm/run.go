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
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Run starts execution of the VM until it halts or faults.
//
// A halt instruction is a normal exit and Run returns nil. Any other error is
// a *Fault and the PC points to the instruction that triggered it.
//
// Calling Run on a Halted or Faulted instance does nothing but return the same
// result as the previous run. Use Reset or Load to start over.
func (i *Instance) Run() error {
	switch i.state {
	case Halted:
		return nil
	case Faulted:
		return i.fault
	}
	i.state = Running
	for i.state == Running {
		i.step()
	}
	return i.fault
}

// Step executes a single instruction. Like Run, it does nothing on a Halted or
// Faulted instance. After Step returns, State tells whether the machine is
// still Running.
func (i *Instance) Step() error {
	switch i.state {
	case Halted:
		return nil
	case Faulted:
		return i.fault
	}
	i.state = Running
	i.step()
	return i.fault
}

func (i *Instance) step() {
	pc := i.PC
	word, err := i.next()
	if err == nil {
		err = i.exec(word)
	}
	if err != nil {
		i.state = Faulted
		i.fault = &Fault{PC: pc, Word: word, Err: err}
		i.PC = pc
		return
	}
	i.insCount++
}

func (i *Instance) exec(word Cell) error {
	in, err := Decode(word)
	if err != nil {
		return err
	}
	if i.trace != nil {
		i.trace.WithFields(logrus.Fields{
			"pc":    i.PC - 1,
			"op":    in.Op,
			"modes": in.Modes,
			"base":  i.base,
		}).Trace("exec")
	}
	switch in.Op {
	case OpAdd:
		return i.binary(&in, add)
	case OpMul:
		return i.binary(&in, mul)
	case OpIn:
		return i.in(&in)
	case OpOut:
		return i.out(&in)
	case OpJumpIfTrue:
		return i.jump(&in, true)
	case OpJumpIfFalse:
		return i.jump(&in, false)
	case OpLessThan:
		return i.binary(&in, lessThan)
	case OpEquals:
		return i.binary(&in, equals)
	case OpAdjustBase:
		v, err := i.read(in.Modes[0])
		if err != nil {
			return err
		}
		i.base += v
		return nil
	case OpHalt:
		i.state = Halted
		return nil
	}
	// Decode only returns known opcodes.
	return errors.Wrapf(ErrInvalidOpcode, "opcode %d", in.Op)
}
