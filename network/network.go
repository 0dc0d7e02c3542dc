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
	"sync"
	"sync/atomic"
	"time"

	"github.com/db47h/intcode/vm"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Network defaults.
const (
	DefaultSize        = 50
	DefaultNATAddress  = 255
	DefaultIdleTimeout = 50 * time.Millisecond
)

// idle machines poll their input queue at this interval.
const pollInterval = time.Millisecond

// ErrHalted is returned by Network.Run when every machine halted before a
// result was found.
var ErrHalted = errors.New("all machines halted")

// Packet is a message between two machines.
type Packet struct {
	Src  int
	Dst  int
	X, Y vm.Cell
}

// Option configures a Network.
type Option func(*Network) error

// Size sets the number of machines. Addresses go from 0 to n-1.
func Size(n int) Option {
	return func(net *Network) error {
		if n <= 0 {
			return errors.Errorf("invalid network size %d", n)
		}
		net.size = n
		return nil
	}
}

// NATAddress sets the address of the NAT.
func NATAddress(addr int) Option {
	return func(net *Network) error { net.natAddr = addr; return nil }
}

// IdleTimeout sets how long the network must stay idle before the NAT sends
// its packet to address 0.
func IdleTimeout(d time.Duration) Option {
	return func(net *Network) error {
		if d <= 0 {
			return errors.Errorf("invalid idle timeout %v", d)
		}
		net.idle = d
		return nil
	}
}

// StopAtNAT makes Run return the Y value of the first packet sent to the NAT.
func StopAtNAT() Option {
	return func(net *Network) error { net.stopAtNAT = true; return nil }
}

// Logger sets the logger used to report routing activity.
func Logger(l logrus.FieldLogger) Option {
	return func(net *Network) error { net.log = l; return nil }
}

// Metrics registers the network counters with reg.
func Metrics(reg prometheus.Registerer) Option {
	return func(net *Network) (err error) {
		net.metrics, err = newMetrics(reg)
		return err
	}
}

// Network is a packet switched network of Intcode machines all running the
// same program.
type Network struct {
	prog      vm.Image
	size      int
	natAddr   int
	idle      time.Duration
	stopAtNAT bool
	log       logrus.FieldLogger
	metrics   *metrics

	// routing state, only valid during Run
	mu    sync.Mutex
	nodes []*node
	nat   natState
}

type natState struct {
	last  Packet
	valid bool
	first chan vm.Cell
}

// New returns a new Network running prog.
func New(prog vm.Image, opts ...Option) (*Network, error) {
	net := &Network{
		prog:    prog.Clone(),
		size:    DefaultSize,
		natAddr: DefaultNATAddress,
		idle:    DefaultIdleTimeout,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if err := opt(net); err != nil {
			return nil, err
		}
	}
	if net.natAddr >= 0 && net.natAddr < net.size {
		return nil, errors.Errorf("NAT address %d conflicts with a machine address", net.natAddr)
	}
	if net.metrics == nil {
		net.metrics, _ = newMetrics(nil)
	}
	return net, nil
}

// node is a machine attached to the network.
type node struct {
	addr   int
	i      *vm.Instance
	queue  *vm.Sender
	in     *vm.Receiver
	misses atomic.Int64 // consecutive reads from an empty queue
	buf    [3]vm.Cell
	n      int
	net    *Network
}

// Recv implements vm.InPort. It returns -1 if no value arrives within the poll
// interval.
func (nd *node) Recv() (vm.Cell, error) {
	v, ok, err := nd.in.RecvTimeout(pollInterval)
	if err != nil {
		return 0, err
	}
	if !ok {
		nd.misses.Add(1)
		return -1, nil
	}
	nd.misses.Store(0)
	return v, nil
}

// Send implements vm.OutPort. Output values are grouped in threes to form a
// packet.
func (nd *node) Send(v vm.Cell) error {
	nd.misses.Store(0)
	nd.buf[nd.n] = v
	nd.n++
	if nd.n < len(nd.buf) {
		return nil
	}
	nd.n = 0
	return nd.net.route(Packet{Src: nd.addr, Dst: int(nd.buf[0]), X: nd.buf[1], Y: nd.buf[2]})
}

func (nd *node) idle() bool {
	return nd.misses.Load() > 1 && nd.in.Len() == 0
}

func (net *Network) deliver(nd *node, p Packet) error {
	if err := nd.queue.Send(p.X); err != nil {
		return err
	}
	return nd.queue.Send(p.Y)
}

func (net *Network) route(p Packet) error {
	net.mu.Lock()
	defer net.mu.Unlock()
	l := net.log.WithFields(logrus.Fields{"src": p.Src, "dst": p.Dst, "x": p.X, "y": p.Y})
	switch {
	case p.Dst == net.natAddr:
		l.Debug("packet to NAT")
		net.metrics.natIn.Inc()
		if !net.nat.valid {
			net.nat.first <- p.Y
		}
		net.nat.last, net.nat.valid = p, true
	case p.Dst >= 0 && p.Dst < len(net.nodes):
		l.Debug("packet")
		net.metrics.routed.Inc()
		return net.deliver(net.nodes[p.Dst], p)
	default:
		l.Warn("packet to unknown address dropped")
		net.metrics.dropped.Inc()
	}
	return nil
}

func (net *Network) idleNodes() bool {
	for _, nd := range net.nodes {
		if !nd.idle() {
			return false
		}
	}
	return true
}

// monitor watches the network until a result is found. It wakes up the network
// with the NAT packet every time it goes idle for long enough.
func (net *Network) monitor(ctx context.Context, running *atomic.Int64) (vm.Cell, error) {
	tick := net.idle / 4
	if tick < pollInterval {
		tick = pollInterval
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	var (
		idleSince time.Time
		lastY     vm.Cell
		sent      bool
	)
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case y := <-net.nat.first:
			if net.stopAtNAT {
				return y, nil
			}
			continue
		case <-t.C:
		}
		if running.Load() == 0 {
			return 0, ErrHalted
		}
		if net.stopAtNAT {
			continue
		}
		if !net.idleNodes() {
			idleSince = time.Time{}
			continue
		}
		if idleSince.IsZero() {
			idleSince = time.Now()
			continue
		}
		if time.Since(idleSince) < net.idle {
			continue
		}
		idleSince = time.Time{}

		net.mu.Lock()
		p, ok := net.nat.last, net.nat.valid
		if ok && sent && p.Y == lastY {
			net.mu.Unlock()
			return p.Y, nil
		}
		if ok {
			net.log.WithFields(logrus.Fields{"x": p.X, "y": p.Y}).Info("network idle, NAT wakes up address 0")
			net.metrics.natOut.Inc()
			lastY, sent = p.Y, true
			if err := net.deliver(net.nodes[0], p); err != nil {
				net.mu.Unlock()
				return 0, err
			}
		}
		net.mu.Unlock()
	}
}

// Run boots all machines and runs the network until the first packet is sent
// to the NAT if StopAtNAT is set, or until the NAT sends the same Y value to
// address 0 twice in a row. It returns that Y value.
//
// A Network can be run several times, but not concurrently.
func (net *Network) Run(ctx context.Context) (vm.Cell, error) {
	net.nodes = make([]*node, net.size)
	net.nat = natState{first: make(chan vm.Cell, 1)}
	for addr := range net.nodes {
		w, r := vm.Pipe(0)
		nd := &node{addr: addr, queue: w, in: r, net: net}
		if err := w.Send(vm.Cell(addr)); err != nil {
			return 0, err
		}
		i, err := vm.New(vm.Program(net.prog), vm.Input(nd), vm.Output(nd))
		if err != nil {
			return 0, err
		}
		nd.i = i
		net.nodes[addr] = nd
	}

	var (
		result  vm.Cell
		running atomic.Int64
		done    = errors.New("done")
	)
	running.Store(int64(len(net.nodes)))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := net.monitor(gctx, &running)
		if err != nil {
			return err
		}
		result = r
		return done
	})
	g.Go(func() error {
		<-gctx.Done()
		for _, nd := range net.nodes {
			nd.in.Close()
		}
		return nil
	})
	net.log.WithFields(logrus.Fields{"machines": net.size, "nat": net.natAddr}).Info("network started")
	for _, nd := range net.nodes {
		net.metrics.machines.Inc()
		g.Go(func() error {
			defer net.metrics.machines.Dec()
			defer running.Add(-1)
			err := nd.i.Run()
			if err != nil && gctx.Err() == nil {
				return errors.Wrap(err, "machine "+strconv.Itoa(nd.addr))
			}
			return nil
		})
	}
	err := g.Wait()
	net.log.Info("network stopped")
	if err == done {
		return result, nil
	}
	return 0, err
}
