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
	"sync"
	"time"
)

// InPort is the source read by the IN instruction. Recv must block until a
// value is available. Any error is fatal to the machine reading from it.
type InPort interface {
	Recv() (Cell, error)
}

// OutPort is the sink written by the OUT instruction.
type OutPort interface {
	Send(v Cell) error
}

// pipe is a FIFO of Cells shared by exactly one Sender and one Receiver.
type pipe struct {
	mu       sync.Mutex
	buf      []Cell
	size     int           // 0: unbounded
	readable chan struct{} // signaled when buf goes non-empty
	writable chan struct{} // signaled when buf drops below size
	eof      chan struct{} // closed by Sender.Close
	gone     chan struct{} // closed by Receiver.Close
	eofOnce  sync.Once
	goneOnce sync.Once
}

// Sender is the writing end of a pipe. It implements OutPort.
type Sender struct{ p *pipe }

// Receiver is the reading end of a pipe. It implements InPort.
type Receiver struct{ p *pipe }

// Pipe creates a pipe and returns both of its ends. If size <= 0 the pipe is
// unbounded and Send never blocks; otherwise Send blocks while size values are
// waiting to be received.
//
// A Sender and a Receiver may be used from different goroutines.
func Pipe(size int) (*Sender, *Receiver) {
	if size < 0 {
		size = 0
	}
	p := &pipe{
		size:     size,
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
		eof:      make(chan struct{}),
		gone:     make(chan struct{}),
	}
	return &Sender{p}, &Receiver{p}
}

func signal(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func isClosed(c chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}

// Send queues v. It returns ErrClosed if either end has been closed.
func (s *Sender) Send(v Cell) error {
	p := s.p
	for {
		p.mu.Lock()
		if isClosed(p.gone) || isClosed(p.eof) {
			p.mu.Unlock()
			return ErrClosed
		}
		if p.size == 0 || len(p.buf) < p.size {
			p.buf = append(p.buf, v)
			p.mu.Unlock()
			signal(p.readable)
			return nil
		}
		p.mu.Unlock()
		select {
		case <-p.writable:
		case <-p.gone:
		}
	}
}

// Close marks the end of the stream. Values already queued can still be
// received; once they are drained, Recv returns ErrClosed.
func (s *Sender) Close() error {
	s.p.eofOnce.Do(func() { close(s.p.eof) })
	return nil
}

// pop removes the head of the queue. It must be called with the lock held.
func (p *pipe) pop() (v Cell, more bool) {
	v = p.buf[0]
	p.buf = p.buf[1:]
	if len(p.buf) == 0 {
		p.buf = nil
	}
	return v, len(p.buf) > 0
}

func (r *Receiver) tryRecv() (v Cell, ok bool, err error) {
	p := r.p
	p.mu.Lock()
	defer p.mu.Unlock()
	if isClosed(p.gone) {
		return 0, false, ErrClosed
	}
	if len(p.buf) > 0 {
		v, more := p.pop()
		if more {
			signal(p.readable)
		}
		signal(p.writable)
		return v, true, nil
	}
	if isClosed(p.eof) {
		return 0, false, ErrClosed
	}
	return 0, false, nil
}

// Recv blocks until a value is available and returns it. It returns ErrClosed
// once the sender is closed and all queued values have been received.
func (r *Receiver) Recv() (Cell, error) {
	for {
		v, ok, err := r.tryRecv()
		if ok || err != nil {
			return v, err
		}
		select {
		case <-r.p.readable:
		case <-r.p.eof:
		case <-r.p.gone:
		}
	}
}

// TryRecv is the non-blocking version of Recv. The boolean result reports
// whether a value was received.
func (r *Receiver) TryRecv() (Cell, bool, error) {
	return r.tryRecv()
}

// RecvTimeout is like Recv but gives up after d. The boolean result is false
// on timeout.
func (r *Receiver) RecvTimeout(d time.Duration) (Cell, bool, error) {
	t := time.NewTimer(d)
	defer t.Stop()
	for {
		v, ok, err := r.tryRecv()
		if ok || err != nil {
			return v, ok, err
		}
		select {
		case <-r.p.readable:
		case <-r.p.eof:
		case <-r.p.gone:
		case <-t.C:
			return r.tryRecv()
		}
	}
}

// Len returns the number of values waiting to be received.
func (r *Receiver) Len() int {
	r.p.mu.Lock()
	n := len(r.p.buf)
	r.p.mu.Unlock()
	return n
}

// Close drops the receiving end. Queued values are discarded, blocked and
// future calls to Send fail with ErrClosed.
func (r *Receiver) Close() error {
	p := r.p
	p.goneOnce.Do(func() {
		p.mu.Lock()
		p.buf = nil
		close(p.gone)
		p.mu.Unlock()
	})
	return nil
}
