// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wireclient implements the outbound half of the protocol
// (spec §4.7): resolving an address, performing the HELLO handshake,
// and issuing serialised command/response round-trips over one TCP
// connection.
package wireclient

import (
	"context"
	"net"
	"sync"

	"github.com/wormkit/worm/pkg/wire"
)

// Auth carries optional credentials presented during the HELLO
// handshake (spec §4.7: "HELLO 3 [AUTH user pass]").
type Auth struct {
	User     string
	Password string
}

// Client is a bidirectional framed connection opened by this side: an
// Encoder over the write half, a Decoder over the read half, serialised
// by a mutex since the protocol admits no pipelining (spec §4.7, §6).
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *wire.Encoder
	dec  *wire.Decoder
	addr string
}

// Dial resolves addr, connects, and performs the HELLO handshake. It
// fails if the server's handshake reply is not a Map (spec §4.7).
func Dial(ctx context.Context, addr string, auth *Auth) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, wire.ErrInternal(err.Error())
	}

	c := &Client{
		conn: conn,
		enc:  wire.NewEncoder(conn),
		dec:  wire.NewDecoder(conn),
		addr: addr,
	}

	args := []wire.Value{wire.NewString("HELLO"), wire.NewString("3")}
	if auth != nil {
		args = append(args, wire.NewString("AUTH"), wire.NewString(auth.User), wire.NewString(auth.Password))
	}

	reply, err := c.exec(wire.NewArray(args...))
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, ok := reply.AsMap(); !ok {
		conn.Close()
		if msg, ok := reply.AsError(); ok {
			return nil, wire.ErrInvalidValue(wire.NewError(msg))
		}
		return nil, wire.ErrInvalidValue(reply)
	}

	return c, nil
}

// Addr returns the address this Client connected to.
func (c *Client) Addr() string { return c.addr }

// Exec writes v, flushes, and reads back exactly one response Value.
func (c *Client) Exec(v wire.Value) (wire.Value, error) {
	return c.exec(v)
}

// Command builds a command Array out of string parts and executes it
// (spec §6: "Construct Client::new(addr, auth_opt); call
// command(&["SET","k","v"])").
func (c *Client) Command(parts ...string) (wire.Value, error) {
	args := make([]wire.Value, len(parts))
	for i, p := range parts {
		args[i] = wire.NewString(p)
	}
	return c.exec(wire.NewArray(args...))
}

func (c *Client) exec(v wire.Value) (wire.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enc.Encode(v); err != nil {
		return wire.Value{}, err
	}
	if err := c.enc.Flush(); err != nil {
		return wire.Value{}, err
	}
	return c.dec.Decode()
}

// Close shuts down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
