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

// Package asm provides utility functions to assemble and disassemble Intcode
// programs.
//
// Supported assembler mnemonics:
//
//	opcode	asm	operands	description
//	------	---	--------	------------------------------------------------
//	1	add	a b dst		dst = a + b
//	2	mul	a b dst		dst = a * b
//	3	in	dst		read the next input value into dst
//	4	out	a		write a to the output
//	5	jt	a t		jump to t if a != 0
//	6	jf	a t		jump to t if a == 0
//	7	lt	a b dst		dst = 1 if a < b, 0 otherwise
//	8	eq	a b dst		dst = 1 if a == b, 0 otherwise
//	9	arb	a		add a to the relative base
//	99	hlt			halt
//
// Operands:
//
// A bare operand is in position mode (it is an address). Prefix it with '#'
// for immediate mode or '@' for relative mode:
//
//	add 10 #3 @-1	( mem[base-1] = mem[10] + 3 )
//
// Immediate mode is rejected for write targets (the dst operands above).
//
// Comments:
//
// Comments are placed between parentheses, i.e. '(' and ')'. The body of the
// comment must be separated from the enclosing parentheses by a space, as in
// ( this is a comment ). Comments cannot be nested.
//
// Literals and label/const identifiers:
//
// Input is split at white space. Every token is either a mnemonic, an operand,
// a label definition, a directive or a data word. Integers are parsed with
// strconv.ParseInt, so 0x2A, 052 and 42 all denote the same value. Character
// literals like 'a' or '\n' are accepted wherever an integer is.
//
// Label definitions start with a colon: ":loop" defines the label "loop" at
// the current address. Using "loop" anywhere an integer is accepted stands for
// that address, so "jt #1 #loop" jumps there. Labels can be used before they
// are defined.
//
// Any integer or label found outside of an instruction's operands is written
// as is (a data word).
//
// Directives:
//
//	.dat		marks the start of data words. It has no effect on the output.
//	.org n		continue assembly at address n. Skipped cells are zero.
//	.equ name n	define the constant name with value n.
//
// Example, a program that echoes its input until it reads 0:
//
//	:loop	in  buf
//		jf  buf #end
//		out buf
//		jt  #1 #loop
//	:end	hlt
//	:buf	.dat 0
package asm
