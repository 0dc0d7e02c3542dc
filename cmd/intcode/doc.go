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

// The intcode command line tool runs Intcode programs and is a showcase for the
// packages github.com/db47h/intcode/vm, asm and network.
//
// Usage:
//
//	intcode [command] [flags] [program]
//
// Commands:
//
//	run       run a program, with input from flags and stdin
//	asm       assemble a source file into the program text format
//	disasm    disassemble a program
//	amp       find the best phase settings for a series of amplifiers
//	net       run a network of machines with a NAT
//
// Global flags:
//
//	--config file
//		  configuration file (default intcode.yaml in the current directory)
//	-v, --verbose
//		  increase logging verbosity
//	--trace
//		  log every executed instruction, this is very slow
//	--debug
//		  print a full stack trace and the fault location should a machine
//		  crash
//
// Programs are text files holding comma separated integers. When the program
// argument is omitted, the "program" setting from the configuration is used.
//
// Settings are read from the configuration file, then from environment
// variables prefixed with INTCODE_, then from flags. A double underscore
// separates sections in variable names:
//
//	program: day13.txt
//	run:
//	  ascii: true
//	  keys:
//	    a: "NOT A J"
//	    w: "WALK"
//	network:
//	  size: 50
//	  idle_timeout: 100ms
//
// is equivalent to INTCODE_PROGRAM=day13.txt INTCODE_NETWORK__SIZE=50, and so
// on.
//
// run: input values given with -i are sent first, then text lines given with
// -l, then stdin unless --no-stdin is set. With --keys, the terminal is
// switched to raw mode and each keystroke mapped in run.keys sends its line.
// --dump prints the machine state and memory once the program stops.
//
// amp: --phases sets the phase settings, --feedback wires the amplifiers in a
// loop and --exact skips the search over all orderings.
//
// net: --size, --nat and --idle set the number of machines, the NAT address
// and the idle delay. --metrics addr serves prometheus metrics while the
// network runs.
package main
