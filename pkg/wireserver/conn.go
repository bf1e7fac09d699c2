// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wireserver

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wormkit/worm/pkg/log"
	"github.com/wormkit/worm/pkg/lru"
	"github.com/wormkit/worm/pkg/wire"
)

type connState int

const (
	stateAwaitingHandshake connState = iota
	stateAuthenticating
	stateReady
	stateClosed
)

// builtinNames is the fixed, ordered list of the four administrative
// commands the runtime appends after a handler's own command set when
// answering COMMANDS (spec §4.4).
var builtinNames = []string{"hello", "auth", "ping", "commands"}

// Conn is one accepted connection driven through the state machine of
// spec §4.5. It owns the read half and write half exclusively via the
// Decoder/Encoder pair, matching the resource-ownership rule of the
// concurrency model (spec §5): no other goroutine touches this Conn's
// socket concurrently.
type Conn struct {
	id            string
	server        *Server
	netConn       net.Conn
	dec           *wire.Decoder
	enc           *wire.Encoder
	remoteAddr    string
	state         connState
	authenticated bool
	username      string
}

// ID returns the correlation id assigned to this connection at accept
// time (SPEC_FULL §D.2), suitable for log lines and the diagnostic ring.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the string form of the peer address.
func (c *Conn) RemoteAddr() string { return c.remoteAddr }

// Authenticated reports whether this connection has passed AUTH/HELLO.
func (c *Conn) Authenticated() bool { return c.authenticated }

// Username returns the name this connection authenticated as, or "" if
// unauthenticated.
func (c *Conn) Username() string { return c.username }

// Write encodes and flushes v immediately. Handlers that stream a
// composite response (an Array header followed by elements written
// directly) use this and then return wire.Done so the runtime does not
// emit a second frame (spec §4.5, "Response write path").
func (c *Conn) Write(v wire.Value) error {
	if err := c.enc.Encode(v); err != nil {
		return err
	}
	return c.enc.Flush()
}

// WritePush writes an unsolicited Push frame (spec §3, glossary "Push
// frame"; SPEC_FULL §D.6). It is a thin convenience over Write +
// wire.NewPush for handlers that notify a client out of request/response
// order.
func (c *Conn) WritePush(kind string, values ...wire.Value) error {
	return c.Write(wire.NewPush(kind, values...))
}

func newConn(s *Server, netConn net.Conn) *Conn {
	return &Conn{
		id:         uuid.NewString(),
		server:     s,
		netConn:    netConn,
		dec:        wire.NewDecoder(netConn),
		enc:        wire.NewEncoder(netConn),
		remoteAddr: netConn.RemoteAddr().String(),
		state:      stateAwaitingHandshake,
	}
}

// serve drives the connection until it closes, per the per-connection
// task described in spec §4.6. It never returns an error: every
// terminal condition (fatal I/O, protocol violation, clean Disconnect)
// is handled in place and logged.
func (c *Conn) serve(ctx context.Context) {
	defer func() {
		c.state = stateClosed
		c.netConn.Close()
		c.server.metrics.decConnectionsOpen()
	}()

	log.Debugf("wireserver: connection %s from %s accepted", c.id, c.remoteAddr)

	for {
		v, err := c.dec.Decode()
		if err != nil {
			log.Debugf("wireserver: connection %s decode failed, closing: %v", c.id, err)
			return
		}

		arr, ok := v.AsArray()
		if !ok {
			log.Debugf("wireserver: connection %s sent a non-array frame, closing", c.id)
			return
		}
		cmd, ok := wire.FromArray(arr)
		if !ok {
			log.Debugf("wireserver: connection %s sent a malformed command, closing", c.id)
			return
		}

		c.server.ring.Push(lru.Entry{ConnID: c.id, Name: cmd.Name, UnixMS: time.Now().UnixMilli()})
		c.server.metrics.incCommand(cmd.Name)

		reply, closeAfter := c.step(ctx, cmd)

		if reply.Kind() != wire.KindDone {
			if err := c.Write(reply); err != nil {
				log.Debugf("wireserver: connection %s write failed, closing: %v", c.id, err)
				return
			}
		}
		if closeAfter {
			if reply.Kind() != wire.KindDone {
				if msg, ok := reply.AsError(); ok {
					log.Debugf("wireserver: connection %s closing after: %s", c.id, msg)
				}
			}
			return
		}
	}
}

// step advances the state machine by one command and returns the
// response to write (or wire.Done if the handler already wrote one
// itself) plus whether the connection must close after this response.
func (c *Conn) step(ctx context.Context, cmd wire.Command) (wire.Value, bool) {
	if c.state != stateReady && cmd.Name != "hello" && cmd.Name != "auth" {
		return wire.NewError("ERR invalid handshake"), true
	}

	switch cmd.Name {
	case "hello":
		return c.handleHello(cmd)
	case "auth":
		return c.handleAuth(cmd)
	case "ping":
		return c.handlePing(cmd), false
	case "commands":
		return c.handleCommands(), false
	default:
		return c.dispatch(ctx, cmd)
	}
}

func (c *Conn) handleHello(cmd wire.Command) (wire.Value, bool) {
	if cmd.Len() < 1 {
		return wire.NewError("NOPROTO wrong number of arguments for HELLO"), true
	}
	version, ok := cmd.Args[0].AsString()
	if !ok || version != "3" {
		return wire.NewError("NOPROTO unsupported protocol version"), true
	}

	rest := cmd.Args[1:]
	if len(rest) >= 3 {
		if tok, ok := rest[0].AsString(); ok && strings.EqualFold(tok, "auth") {
			user, _ := rest[1].AsString()
			pass, _ := rest[2].AsString()
			if !c.authenticate(user, pass) {
				return wire.NewError("ERR invalid password"), true
			}
		}
	}

	if c.server.handler.PasswordRequired() && !c.authenticated {
		return wire.NewError("ERR password required"), true
	}
	if !c.server.handler.PasswordRequired() {
		c.authenticated = true
	}

	c.state = stateReady
	return c.server.helloReply(c.username), false
}

func (c *Conn) handleAuth(cmd wire.Command) (wire.Value, bool) {
	var user, pass string
	switch cmd.Len() {
	case 1:
		user = "default"
		pass, _ = cmd.Args[0].AsString()
	case 2:
		user, _ = cmd.Args[0].AsString()
		pass, _ = cmd.Args[1].AsString()
	default:
		return wire.NewError("ERR wrong number of arguments for AUTH"), true
	}

	if !c.authenticate(user, pass) {
		return wire.NewError("ERR invalid password"), true
	}
	return wire.OK(), false
}

// authenticate accepts either a session ticket (SPEC_FULL §D.1) or a
// plain password checked against the handler's policy.
func (c *Conn) authenticate(user, pass string) bool {
	if sub, ok := c.server.verifyTicket(pass); ok {
		c.authenticated = true
		c.username = sub
		return true
	}
	if c.server.handler.CheckPassword(user, pass) {
		c.authenticated = true
		c.username = user
		return true
	}
	return false
}

func (c *Conn) handlePing(cmd wire.Command) wire.Value {
	if cmd.Len() == 0 {
		return wire.NewString("PONG")
	}
	return cmd.Args[0]
}

func (c *Conn) handleCommands() wire.Value {
	names := c.server.handler.Commands()
	out := make([]wire.Value, 0, len(names)+len(builtinNames))
	for _, n := range names {
		out = append(out, wire.NewString(n))
	}
	for _, n := range builtinNames {
		out = append(out, wire.NewString(n))
	}
	return wire.NewArray(out...)
}

func (c *Conn) dispatch(ctx context.Context, cmd wire.Command) (wire.Value, bool) {
	reply, err := c.server.handler.Call(ctx, c, cmd)
	if err == nil {
		return reply, false
	}

	var werr *wire.Error
	if errors.As(err, &werr) {
		c.server.metrics.incError(werr.Kind.String())
		if werr.Kind == wire.KindDisconnect {
			c.server.metrics.incDisconnect()
			return wire.NewError(werr.Message), true
		}
		return wire.NewError(werr.Message), false
	}

	c.server.metrics.incError("internal")
	return wire.Errorf("%v", err), false
}
