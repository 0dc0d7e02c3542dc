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
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "intcode"

type metrics struct {
	routed   prometheus.Counter
	natIn    prometheus.Counter
	natOut   prometheus.Counter
	dropped  prometheus.Counter
	machines prometheus.Gauge
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "network",
		Name:      name,
		Help:      help,
	})
}

// newMetrics creates the network metrics and registers them with reg. If reg
// is nil, the metrics are live but not exported. Collectors already registered
// by another Network on the same registry are shared.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		routed:  newCounter("packets_routed_total", "Number of packets delivered to a machine."),
		natIn:   newCounter("nat_received_total", "Number of packets sent to the NAT."),
		natOut:  newCounter("nat_delivered_total", "Number of packets re-sent by the NAT to address 0."),
		dropped: newCounter("packets_dropped_total", "Number of packets sent to an unknown address."),
		machines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "machines_running",
			Help:      "Number of machines currently running.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	m.routed, err = register(reg, m.routed)
	if err == nil {
		m.natIn, err = register(reg, m.natIn)
	}
	if err == nil {
		m.natOut, err = register(reg, m.natOut)
	}
	if err == nil {
		m.dropped, err = register(reg, m.dropped)
	}
	if err == nil {
		m.machines, err = register(reg, m.machines)
	}
	if err != nil {
		return nil, errors.Wrap(err, "metrics registration failed")
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return c, err
}
