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

// Package network runs groups of Intcode machines wired together through
// pipes.
//
// Chain and Ring build amplifier topologies: each machine is given a phase
// setting as its first input, then reads the signal produced by the previous
// machine. In a Ring, the last machine feeds the first one back until every
// machine has halted. MaxSignal searches all orderings of a set of phases for
// the strongest output.
//
// A Network boots machines with their address as first input and routes the
// packets they send: each packet is three output values, a destination
// address and an X, Y pair. A machine reading from an empty queue gets -1.
// Packets sent to the NAT address are held by the NAT which, once the whole
// network has gone idle, sends the last one it got to address 0.
//
// All machines of a topology run on their own goroutine under an errgroup. The
// first failing machine stops the others by closing their input pipes, and so
// does canceling the context given to Run.
package network
