// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wireserver

import (
	"context"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wormkit/worm/pkg/log"
	"github.com/wormkit/worm/pkg/lru"
	"github.com/wormkit/worm/pkg/wire"
)

// Config configures a Server. Every field has a usable zero value;
// NewServer fills in the documented defaults for anything left unset.
type Config struct {
	// Name and Version are echoed back in the HELLO reply map.
	Name    string
	Version string

	// TicketSecret, if non-nil, enables JWT session tickets (SPEC_FULL
	// §D.1): HELLO/AUTH accept a previously issued ticket in place of a
	// plaintext password.
	TicketSecret []byte
	TicketTTL    time.Duration

	// RingCapacity bounds the in-memory diagnostic ring (SPEC_FULL §D.2)
	// exposed by the admin HTTP surface. Default 256.
	RingCapacity int
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "worm"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.TicketTTL == 0 {
		c.TicketTTL = time.Hour
	}
	if c.RingCapacity == 0 {
		c.RingCapacity = 256
	}
	return c
}

// Server owns the application Handler and drives every accepted
// connection through the state machine in conn.go (spec §4.6). Unlike
// the source's reference-counted mutex wrapper around application
// state, this Server holds no state of its own beyond the Handler: per
// spec §9's "equally acceptable" alternative, ownership and locking of
// T are entirely the Handler implementation's concern (see
// wireserver.Registry and the application-side handlers it wraps).
type Server struct {
	handler Handler
	cfg     Config

	ticketSecret []byte
	ticketTTL    time.Duration

	ring    *lru.Ring
	metrics *metrics

	listener net.Listener
}

// NewServer builds a Server around handler. It does not bind a listener
// until Run is called.
func NewServer(handler Handler, cfg Config) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		handler:      handler,
		cfg:          cfg,
		ticketSecret: cfg.TicketSecret,
		ticketTTL:    cfg.TicketTTL,
		ring:         lru.NewRing(cfg.RingCapacity),
		metrics:      newMetrics(),
	}
}

// IssueTicket mints a session ticket for user (SPEC_FULL §D.1). It
// fails if the Server was built without a TicketSecret.
func (s *Server) IssueTicket(user string) (string, error) {
	return s.issueTicket(user)
}

// Ring exposes the diagnostic ring for the admin HTTP surface (admin.go).
func (s *Server) Ring() *lru.Ring { return s.ring }

// PrometheusRegistry exposes the Server's private registry for the
// admin HTTP surface's /metrics endpoint.
func (s *Server) PrometheusRegistry() *prometheus.Registry { return s.metrics.registry }

// Snapshot returns a cheap point-in-time read of the Server's counters,
// for a periodic diagnostics log line (cmd/wormd) that would otherwise
// have to scrape its own /metrics endpoint.
func (s *Server) Snapshot() Snapshot { return s.metrics.snapshot() }

// helloReply builds the HELLO reply map for username (SPEC_FULL §8
// scenario 1: the three mandatory keys, unconditionally). When the
// Server was built with a TicketSecret, it also mints a fresh session
// ticket and adds it under "id", so a client can reconnect later via
// AUTH without resending a plaintext password.
func (s *Server) helloReply(username string) wire.Value {
	entries := []wire.MapEntry{
		{Key: wire.NewString("server"), Value: wire.NewString(s.cfg.Name)},
		{Key: wire.NewString("version"), Value: wire.NewString(s.cfg.Version)},
		{Key: wire.NewString("proto"), Value: wire.NewInt(3)},
	}
	if s.ticketSecret != nil {
		if ticket, err := s.issueTicket(username); err == nil {
			entries = append(entries, wire.MapEntry{Key: wire.NewString("id"), Value: wire.NewString(ticket)})
		}
	}
	return wire.NewMap(entries...)
}

// Run binds addr and accepts connections until ctx is cancelled or the
// listener fails fatally (spec §4.6, §5 "Cancellation and timeouts"):
// cancelling ctx stops the accept loop but does not close connections
// already in flight.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Infof("wireserver: listening on %s", addr)
	return s.RunListener(ctx, ln)
}

// RunListener is Run for a caller that already owns a bound listener
// (tests, or a host process that binds the socket itself to drop
// privileges before handing it off).
func (s *Server) RunListener(ctx context.Context, ln net.Listener) error {
	s.listener = ln

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		netConn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		s.metrics.incConnections()

		conn := newConn(s, netConn)
		go conn.serve(ctx)
	}
}

// Close stops accepting new connections by closing the listener. It
// does not touch connections already in flight, matching the
// cancellation semantics of Run.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
