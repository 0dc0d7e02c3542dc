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

// Package vm implements the Intcode virtual machine.
//
// Programs are flat sequences of integer words. An instruction word holds the
// opcode in its two low decimal digits and the parameter modes of up to three
// operands in the following digits (hundreds for the first operand, thousands
// for the second, ten-thousands for the third):
//
//	opcode	asm	operands	effect
//	------	---	--------	----------------------------------------------
//	1	add	a b dst		dst = a + b
//	2	mul	a b dst		dst = a * b
//	3	in	dst		dst = next input value (blocks)
//	4	out	a		send a to output
//	5	jt	a t		if a != 0, jump to t
//	6	jf	a t		if a == 0, jump to t
//	7	lt	a b dst		dst = 1 if a < b, else 0
//	8	eq	a b dst		dst = 1 if a == b, else 0
//	9	arb	a		relative base += a
//	99	hlt			halt
//
// Modes are 0 (position: the operand is an address), 1 (immediate: the operand
// is the value, never valid as a write target) and 2 (relative: the operand is
// an address offset by the relative base).
//
// Memory grows on demand: any access to an address past the end of memory
// zero-extends it first. Negative addresses are always an error.
//
// Input and output go through the InPort and OutPort interfaces. The Pipe
// function returns both ends of an in-memory FIFO that can be used to wire
// several machines together, each running in its own goroutine:
//
//	a, ain, aout, _ := vm.NewPiped(vm.Program(prog))
//	b, _ := vm.New(vm.Program(prog), vm.Input(aout), vm.Output(ain))
//	go a.Run()
//	go b.Run()
//
// Run never panics on a bad program. Halting is a normal exit and returns nil,
// anything else is reported as a *Fault.
package vm
