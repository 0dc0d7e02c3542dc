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
	"github.com/sirupsen/logrus"
)

// Cell is the raw type stored in a memory location.
type Cell int64

// State is the execution state of an Instance.
type State int

// Instance states.
const (
	Ready   State = iota // loaded or reset, PC at 0
	Running              // inside Run or Step
	Halted               // a halt instruction was executed
	Faulted              // an instruction failed
)

var stateNames = [...]string{"ready", "running", "halted", "faulted"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Instance represents an Intcode machine instance.
//
// An Instance is not safe for concurrent use: Run executes on the calling
// goroutine and only ever interacts with other goroutines through its input
// and output ports.
type Instance struct {
	PC       int // Program Counter (aka. Instruction Pointer)
	mem      Image
	base     Cell
	state    State
	fault    error
	insCount int64
	input    InPort
	output   OutPort
	trace    logrus.FieldLogger
}

// Option interface
type Option func(*Instance) error

// Input sets the port read by IN instructions. With no input configured, IN
// faults with ErrRead.
func Input(in InPort) Option {
	return func(i *Instance) error { i.input = in; return nil }
}

// Output sets the port written by OUT instructions. With no output configured,
// OUT faults with ErrWrite.
func Output(out OutPort) Option {
	return func(i *Instance) error { i.output = out; return nil }
}

// Program loads a copy of img at construction time. See Load.
func Program(img Image) Option {
	return func(i *Instance) error { i.Load(img); return nil }
}

// Trace logs every decoded instruction at Trace level on the given logger.
// Set to nil to disable tracing.
func Trace(l logrus.FieldLogger) Option {
	return func(i *Instance) error { i.trace = l; return nil }
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new Intcode machine instance. The instance is Ready with an
// empty memory unless the Program option is given.
func New(opts ...Option) (*Instance, error) {
	i := new(Instance)
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	return i, nil
}

// NewPiped creates a new machine wired to two fresh unbounded pipes and
// returns the ends of the pipes that the caller uses to talk to the machine:
// values sent on in are read by IN instructions, values written by OUT
// instructions are received on out.
//
// Options are applied after the pipes are set, so Input and Output options
// override the piped ends.
func NewPiped(opts ...Option) (i *Instance, in *Sender, out *Receiver, err error) {
	in, ir := Pipe(0)
	ow, out := Pipe(0)
	i, err = New(append([]Option{Input(ir), Output(ow)}, opts...)...)
	if err != nil {
		return nil, nil, nil, err
	}
	return i, in, out, nil
}

// Load installs a copy of img as the machine's memory and resets it. It
// returns the receiver so that calls can be chained:
//
//	err := i.Load(img).Run()
func (i *Instance) Load(img Image) *Instance {
	i.mem = img.Clone()
	i.Reset()
	return i
}

// Reset brings the machine back to the Ready state: PC and relative base are
// cleared, but memory is left as is, including any changes made by a previous
// run.
func (i *Instance) Reset() {
	i.PC = 0
	i.base = 0
	i.state = Ready
	i.fault = nil
	i.insCount = 0
}

// State returns the current execution state.
func (i *Instance) State() State { return i.state }

// Err returns the fault that stopped the machine, or nil if it is not in the
// Faulted state.
func (i *Instance) Err() error { return i.fault }

// RelativeBase returns the current value of the relative base register.
func (i *Instance) RelativeBase() Cell { return i.base }

// InstructionCount returns the number of instructions executed since the last
// Load or Reset.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}
