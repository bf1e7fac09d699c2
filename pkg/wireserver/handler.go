// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wireserver implements the per-connection state machine and the
// accept-loop runtime that sit on top of pkg/wire: the handshake, the
// built-in administrative commands, user command dispatch, and the
// shared-state discipline a Handler's commands run under.
package wireserver

import (
	"context"

	"github.com/wormkit/worm/pkg/wire"
)

// Handler is the capability set an application author supplies to a
// Server (spec §4.4). The library never generates this from reflection
// or struct tags; Registry below is the runtime-registry alternative to
// that code-generation shortcut.
type Handler interface {
	// Commands lists the user-visible command names this handler
	// supports, in declaration order. The runtime prepends nothing and
	// appends the four built-ins only when answering COMMANDS.
	Commands() []string

	// Call dispatches an already-routed command. For a name outside
	// Commands(), implementations MUST return
	// wire.NewError("NOCOMMAND invalid command") rather than an error.
	Call(ctx context.Context, conn *Conn, cmd wire.Command) (wire.Value, error)

	// PasswordRequired reports whether AUTH is mandatory before Ready.
	PasswordRequired() bool

	// CheckPassword validates credentials presented via HELLO's AUTH
	// clause or a standalone AUTH command.
	CheckPassword(user, pass string) bool
}

// HandlerFunc is the shape of one registered command callable: it closes
// over whatever application state it needs and over the mutex guarding
// it, per the shared-state discipline of the concurrency model - the
// lock is acquired and released entirely inside the closure, never held
// across the connection's I/O (Conn.Write).
type HandlerFunc func(ctx context.Context, conn *Conn, cmd wire.Command) (wire.Value, error)

// Registry is a ready-made Handler: a runtime name-to-closure dispatch
// table, the portable substitute for the source's derive-macro-generated
// match statement (spec §9). Application authors build one with
// NewRegistry, Register each command, then pass the Registry itself (or
// an embedding type that overrides PasswordRequired/CheckPassword) to
// NewServer.
type Registry struct {
	order         []string
	funcs         map[string]HandlerFunc
	requirePass   bool
	checkPassword func(user, pass string) bool
}

// NewRegistry builds an empty registry. By default no password is
// required and CheckPassword always fails; call RequirePassword to
// install a real policy.
func NewRegistry() *Registry {
	return &Registry{
		funcs:         make(map[string]HandlerFunc),
		checkPassword: func(string, string) bool { return false },
	}
}

// Register adds a named command. The name is stored and matched
// lower-cased, matching Command construction (spec §4.4).
func (r *Registry) Register(name string, fn HandlerFunc) {
	lower := wire.NewCommand(name, nil).Name
	if _, exists := r.funcs[lower]; !exists {
		r.order = append(r.order, lower)
	}
	r.funcs[lower] = fn
}

// RequirePassword installs the authentication policy. If check is nil,
// PasswordRequired() still reports require, but CheckPassword always
// fails (a deliberately locked-out handler).
func (r *Registry) RequirePassword(check func(user, pass string) bool) {
	r.requirePass = true
	if check != nil {
		r.checkPassword = check
	}
}

// Commands implements Handler.
func (r *Registry) Commands() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Call implements Handler.
func (r *Registry) Call(ctx context.Context, conn *Conn, cmd wire.Command) (wire.Value, error) {
	fn, ok := r.funcs[cmd.Name]
	if !ok {
		return wire.NewError("NOCOMMAND invalid command"), nil
	}
	return fn(ctx, conn, cmd)
}

// PasswordRequired implements Handler.
func (r *Registry) PasswordRequired() bool { return r.requirePass }

// CheckPassword implements Handler.
func (r *Registry) CheckPassword(user, pass string) bool { return r.checkPassword(user, pass) }

var _ Handler = (*Registry)(nil)
