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

import "sync"

// InFunc adapts a function to the InPort interface.
type InFunc func() (Cell, error)

// Recv calls f.
func (f InFunc) Recv() (Cell, error) { return f() }

// OutFunc adapts a function to the OutPort interface.
type OutFunc func(v Cell) error

// Send calls f(v).
func (f OutFunc) Send(v Cell) error { return f(v) }

type values struct {
	v []Cell
}

func (r *values) Recv() (Cell, error) {
	if len(r.v) == 0 {
		return 0, ErrClosed
	}
	v := r.v[0]
	r.v = r.v[1:]
	return v, nil
}

// Values returns an InPort that yields the given values in order, then fails
// with ErrClosed.
func Values(v ...Cell) InPort {
	return &values{append([]Cell(nil), v...)}
}

// Collector is an OutPort that records every value sent to it. It is safe for
// concurrent use.
type Collector struct {
	mu sync.Mutex
	v  []Cell
}

// Send appends v to the collected values.
func (c *Collector) Send(v Cell) error {
	c.mu.Lock()
	c.v = append(c.v, v)
	c.mu.Unlock()
	return nil
}

// Values returns a copy of the collected values.
func (c *Collector) Values() []Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Cell(nil), c.v...)
}

// Last returns the last collected value. The boolean result is false if
// nothing was collected.
func (c *Collector) Last() (Cell, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.v) == 0 {
		return 0, false
	}
	return c.v[len(c.v)-1], true
}

// Drain receives values from r until it is closed and returns them.
func Drain(r InPort) []Cell {
	var out []Cell
	for {
		v, err := r.Recv()
		if err != nil {
			return out
		}
		out = append(out, v)
	}
}
