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

package network

import (
	"context"
	"strconv"

	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"
)

// ErrNoOutput is returned when the last machine of a topology halts without
// producing any signal.
var ErrNoOutput = errors.New("no output signal")

// stage is one machine of a topology along with the pipe ends it owns.
type stage struct {
	name string
	i    *vm.Instance
	in   *vm.Receiver
	out  *vm.Sender // closed once the machine stops, nil if not a pipe
}

// run runs all stages concurrently and waits for them to finish. Faults caused
// by pipes being closed while shutting down are not errors.
func run(ctx context.Context, stages []*stage) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range stages {
		g.Go(func() error {
			err := s.i.Run()
			if s.out != nil {
				s.out.Close()
			}
			if err != nil && gctx.Err() == nil {
				return errors.Wrap(err, s.name)
			}
			return nil
		})
	}
	stop, stopped := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-gctx.Done():
		case <-stop:
		}
		for _, s := range stages {
			s.in.Close()
		}
	}()
	err := g.Wait()
	close(stop)
	<-stopped
	if err != nil {
		return err
	}
	return ctx.Err()
}

func newStage(k int, prog vm.Image, phase vm.Cell, out vm.OutPort) (*stage, *vm.Sender, error) {
	w, r := vm.Pipe(0)
	if err := w.Send(phase); err != nil {
		return nil, nil, err
	}
	i, err := vm.New(vm.Program(prog), vm.Input(r), vm.Output(out))
	if err != nil {
		return nil, nil, err
	}
	return &stage{name: "amplifier " + strconv.Itoa(k), i: i, in: r}, w, nil
}

// Chain runs one copy of prog per phase setting, each machine feeding the next
// one, and returns the last signal emitted by the last machine. The first
// machine gets an input signal of 0.
func Chain(ctx context.Context, prog vm.Image, phases []vm.Cell) (vm.Cell, error) {
	if len(phases) == 0 {
		return 0, errors.New("no phase settings")
	}
	tail, result := vm.Pipe(0)
	defer result.Close()
	stages := make([]*stage, len(phases))
	var (
		next       vm.OutPort = tail
		nextSender            = tail
	)
	// build backwards so that each stage knows where its output goes
	for k := len(phases) - 1; k >= 0; k-- {
		s, w, err := newStage(k, prog, phases[k], next)
		if err != nil {
			return 0, err
		}
		s.out = nextSender
		stages[k] = s
		next, nextSender = w, w
	}
	if err := nextSender.Send(0); err != nil {
		return 0, err
	}
	if err := run(ctx, stages); err != nil {
		return 0, err
	}
	signals := vm.Drain(result)
	if len(signals) == 0 {
		return 0, ErrNoOutput
	}
	return signals[len(signals)-1], nil
}

// Ring is like Chain, except that the output of the last machine is fed back
// to the first one. It returns the last signal emitted by the last machine once
// all machines have halted.
func Ring(ctx context.Context, prog vm.Image, phases []vm.Cell) (vm.Cell, error) {
	n := len(phases)
	if n == 0 {
		return 0, errors.New("no phase settings")
	}
	stages := make([]*stage, n)
	senders := make([]*vm.Sender, n)
	var (
		last vm.Cell
		seen bool
	)
	// the last stage writes through a tap that records the signal, so it is
	// wired once the first stage's input exists.
	var feedback *vm.Sender
	tap := vm.OutFunc(func(v vm.Cell) error {
		last, seen = v, true
		return feedback.Send(v)
	})
	for k := n - 1; k >= 0; k-- {
		var out vm.OutPort = tap
		if k < n-1 {
			out = senders[k+1]
		}
		s, w, err := newStage(k, prog, phases[k], out)
		if err != nil {
			return 0, err
		}
		if k < n-1 {
			s.out = senders[k+1]
		}
		stages[k], senders[k] = s, w
	}
	feedback = senders[0]
	if err := feedback.Send(0); err != nil {
		return 0, err
	}
	if err := run(ctx, stages); err != nil {
		return 0, err
	}
	if !seen {
		return 0, ErrNoOutput
	}
	return last, nil
}

// MaxSignal runs prog with every ordering of the given phase settings and
// returns the highest signal along with the phases that produced it. If
// feedback is true, machines are wired as a Ring, otherwise as a Chain.
func MaxSignal(ctx context.Context, prog vm.Image, phases []vm.Cell, feedback bool) (best vm.Cell, order []vm.Cell, err error) {
	if len(phases) == 0 {
		return 0, nil, errors.New("no phase settings")
	}
	topology := Chain
	if feedback {
		topology = Ring
	}
	perm := make([]vm.Cell, len(phases))
	for _, p := range combin.Permutations(len(phases), len(phases)) {
		for k, idx := range p {
			perm[k] = phases[idx]
		}
		signal, err := topology(ctx, prog, perm)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "phases %v", perm)
		}
		if order == nil || signal > best {
			best, order = signal, append(order[:0], perm...)
		}
	}
	return best, order, nil
}
