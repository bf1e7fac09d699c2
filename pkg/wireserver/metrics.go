// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wireserver

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics bundles the Prometheus collectors a Server registers on
// construction (SPEC_FULL §C). Each Server gets its own registry so
// that multiple Servers in one process (e.g. in tests) never collide on
// collector registration. Alongside the collectors, a handful of plain
// atomic counters mirror the same totals so cmd/wormd's scheduled
// diagnostics job (SPEC_FULL §C, go-co-op/gocron) can read a cheap
// snapshot without scraping its own /metrics endpoint.
type metrics struct {
	registry         *prometheus.Registry
	connectionsTotal prometheus.Counter
	connectionsOpen  prometheus.Gauge
	commandsTotal    *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	disconnectsTotal prometheus.Counter

	connectionsTotalCount int64
	connectionsOpenCount  int64
	commandsTotalCount    int64
	errorsTotalCount      int64
	disconnectsTotalCount int64
}

// Snapshot is a point-in-time read of a Server's counters.
type Snapshot struct {
	ConnectionsTotal int64
	ConnectionsOpen  int64
	CommandsTotal    int64
	ErrorsTotal      int64
	DisconnectsTotal int64
}

func (m *metrics) snapshot() Snapshot {
	return Snapshot{
		ConnectionsTotal: atomic.LoadInt64(&m.connectionsTotalCount),
		ConnectionsOpen:  atomic.LoadInt64(&m.connectionsOpenCount),
		CommandsTotal:    atomic.LoadInt64(&m.commandsTotalCount),
		ErrorsTotal:      atomic.LoadInt64(&m.errorsTotalCount),
		DisconnectsTotal: atomic.LoadInt64(&m.disconnectsTotalCount),
	}
}

func (m *metrics) incConnections() {
	m.connectionsTotal.Inc()
	m.connectionsOpen.Inc()
	atomic.AddInt64(&m.connectionsTotalCount, 1)
	atomic.AddInt64(&m.connectionsOpenCount, 1)
}

func (m *metrics) decConnectionsOpen() {
	m.connectionsOpen.Dec()
	atomic.AddInt64(&m.connectionsOpenCount, -1)
}

func (m *metrics) incCommand(name string) {
	m.commandsTotal.WithLabelValues(name).Inc()
	atomic.AddInt64(&m.commandsTotalCount, 1)
}

func (m *metrics) incError(kind string) {
	m.errorsTotal.WithLabelValues(kind).Inc()
	atomic.AddInt64(&m.errorsTotalCount, 1)
}

func (m *metrics) incDisconnect() {
	m.disconnectsTotal.Inc()
	atomic.AddInt64(&m.disconnectsTotalCount, 1)
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worm",
			Name:      "connections_total",
			Help:      "Total number of accepted connections.",
		}),
		connectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "worm",
			Name:      "connections_open",
			Help:      "Number of currently open connections.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worm",
			Name:      "commands_total",
			Help:      "Total number of commands dispatched, by name.",
		}, []string{"command"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worm",
			Name:      "errors_total",
			Help:      "Total number of error replies, by kind.",
		}, []string{"kind"}),
		disconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worm",
			Name:      "disconnects_total",
			Help:      "Total number of controlled Disconnect terminations.",
		}),
	}
	reg.MustRegister(m.connectionsTotal, m.connectionsOpen, m.commandsTotal, m.errorsTotal, m.disconnectsTotal)
	return m
}
