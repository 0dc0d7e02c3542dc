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

package network_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/db47h/intcode/asm"
	"github.com/db47h/intcode/network"
	"github.com/db47h/intcode/vm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relay returns a program for a network of size machines. Machine 0 sends a
// packet with Y=7 to machine 1, and every machine forwards what it gets to the
// next one. The last machine forwards to the NAT. When machine 0 is woken up by
// the NAT, it starts a new round with Y=100. At boot, the last machine also
// sends a packet to address 77, which does not exist.
func relay(t *testing.T, size int) vm.Image {
	t.Helper()
	code := fmt.Sprintf(`
		.equ LAST %d
		in   addr
		jt   addr #notzero
		out  #1
		out  #0
		out  #7
		jt   #1 #wait
:notzero
		eq   addr #LAST t
		jf   t #wait
		out  #77
		out  #0
		out  #0
:wait	in   x
		eq   x #-1 t
		jt   t #wait
		in   y
		jt   addr #fwd
		add  #100 #0 y
:fwd	eq   addr #LAST t
		jt   t #nat
		add  addr #1 dst
		jt   #1 #send
:nat	add  #255 #0 dst
:send	out  dst
		out  x
		out  y
		jt   #1 #wait
:addr	.dat 0
:x		.dat 0
:y		.dat 0
:t		.dat 0
:dst	.dat 0
`, size-1)
	img, err := asm.Assemble("relay", strings.NewReader(code))
	require.NoError(t, err)
	return img
}

func newNetwork(t *testing.T, prog vm.Image, opts ...network.Option) *network.Network {
	t.Helper()
	logger, _ := test.NewNullLogger()
	net, err := network.New(prog, append([]network.Option{network.Logger(logger), network.IdleTimeout(20 * time.Millisecond)}, opts...)...)
	require.NoError(t, err)
	return net
}

func TestNetwork_stopAtNAT(t *testing.T) {
	net := newNetwork(t, relay(t, 4), network.Size(4), network.StopAtNAT())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	y, err := net.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, vm.Cell(7), y)
}

func TestNetwork_NAT(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	net := newNetwork(t, relay(t, 4), network.Size(4), network.Metrics(reg))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	y, err := net.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, vm.Cell(100), y)

	const expect = `
# HELP intcode_network_nat_delivered_total Number of packets re-sent by the NAT to address 0.
# TYPE intcode_network_nat_delivered_total counter
intcode_network_nat_delivered_total 2
# HELP intcode_network_nat_received_total Number of packets sent to the NAT.
# TYPE intcode_network_nat_received_total counter
intcode_network_nat_received_total 3
# HELP intcode_network_packets_dropped_total Number of packets sent to an unknown address.
# TYPE intcode_network_packets_dropped_total counter
intcode_network_packets_dropped_total 1
# HELP intcode_network_packets_routed_total Number of packets delivered to a machine.
# TYPE intcode_network_packets_routed_total counter
intcode_network_packets_routed_total 9
# HELP intcode_network_machines_running Number of machines currently running.
# TYPE intcode_network_machines_running gauge
intcode_network_machines_running 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expect),
		"intcode_network_nat_delivered_total",
		"intcode_network_nat_received_total",
		"intcode_network_packets_dropped_total",
		"intcode_network_packets_routed_total",
		"intcode_network_machines_running"))

	// the same registry can serve another network
	_, err = network.New(relay(t, 4), network.Size(4), network.Metrics(reg))
	assert.NoError(t, err)
}

func TestNetwork_halted(t *testing.T) {
	net := newNetwork(t, vm.Image{3, 0, 99}, network.Size(3))
	_, err := net.Run(context.Background())
	assert.ErrorIs(t, err, network.ErrHalted)
}

func TestNetwork_fault(t *testing.T) {
	// in 0 then hits opcode 42
	net := newNetwork(t, vm.Image{3, 0, 42}, network.Size(3))
	_, err := net.Run(context.Background())
	assert.ErrorIs(t, err, vm.ErrInvalidOpcode)
}

func TestNetwork_cancel(t *testing.T) {
	net := newNetwork(t, relay(t, 2), network.Size(2), network.NATAddress(-1))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// packets go to 255, which is no longer the NAT: nothing ever happens
	_, err := net.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNetwork_options(t *testing.T) {
	_, err := network.New(vm.Image{99}, network.Size(0))
	assert.Error(t, err)
	_, err = network.New(vm.Image{99}, network.IdleTimeout(0))
	assert.Error(t, err)
	_, err = network.New(vm.Image{99}, network.Size(10), network.NATAddress(3))
	assert.Error(t, err)
}
