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

// Fault causes. Use errors.Is or errors.Cause on the error returned by Run to
// tell them apart.
var (
	ErrInvalidOpcode  = errors.New("invalid opcode")
	ErrInvalidMode    = errors.New("invalid parameter mode")
	ErrInvalidAddress = errors.New("invalid address")
	ErrImmediateWrite = errors.New("write in immediate mode")
	ErrRead           = errors.New("read error")
	ErrWrite          = errors.New("write error")
	ErrParse          = errors.New("parse error")
)

// ErrClosed is returned by pipe endpoints once the other end is gone.
var ErrClosed = errors.New("pipe closed")

// Fault is the error returned by Run and Step when an instruction fails. It is
// terminal: the instance stays Faulted until Reset or Load is called.
type Fault struct {
	PC   int   // address of the faulting instruction
	Word Cell  // instruction word at PC, 0 if PC was out of range
	Err  error // one of the Err* fault causes, possibly wrapped
}

func (f *Fault) Error() string {
	return "fault at " + strconv.Itoa(f.PC) + " (" + strconv.FormatInt(int64(f.Word), 10) + "): " + f.Err.Error()
}

// Cause returns the underlying fault cause. It makes errors.Cause from
// github.com/pkg/errors return one of the Err* values.
func (f *Fault) Cause() error { return errors.Cause(f.Err) }

// Unwrap supports errors.Is and errors.As.
func (f *Fault) Unwrap() error { return f.Err }
