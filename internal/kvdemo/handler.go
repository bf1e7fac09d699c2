// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package kvdemo

import (
	"context"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/wormkit/worm/pkg/wire"
	"github.com/wormkit/worm/pkg/wireserver"
)

// NewHandler wires Store into a Registry exposing get/set/del/keys/dbsize.
// users maps username to a bcrypt hash (internal/config.Keys.Users); if
// it is empty, password authentication is left optional, matching the
// teacher's internal/auth/local.go pattern of only enforcing a check
// when credentials are actually configured.
func NewHandler(store *Store, users map[string]string) *wireserver.Registry {
	reg := wireserver.NewRegistry()

	reg.Register("get", func(ctx context.Context, conn *wireserver.Conn, cmd wire.Command) (wire.Value, error) {
		key, ok := cmd.PopFront().AsString()
		if !ok {
			return wire.Value{}, wire.ErrInvalidValue(wire.NewString("get requires a key"))
		}
		v, ok := store.get(key)
		if !ok {
			return wire.Null, nil
		}
		return wire.NewString(v), nil
	})

	reg.Register("set", func(ctx context.Context, conn *wireserver.Conn, cmd wire.Command) (wire.Value, error) {
		key, ok := cmd.PopFront().AsString()
		if !ok {
			return wire.Value{}, wire.ErrInvalidValue(wire.NewString("set requires a key"))
		}
		value, ok := cmd.PopFront().AsString()
		if !ok {
			return wire.Value{}, wire.ErrInvalidValue(wire.NewString("set requires a value"))
		}
		store.set(key, value)
		return wire.OK(), nil
	})

	reg.Register("del", func(ctx context.Context, conn *wireserver.Conn, cmd wire.Command) (wire.Value, error) {
		key, ok := cmd.PopFront().AsString()
		if !ok {
			return wire.Value{}, wire.ErrInvalidValue(wire.NewString("del requires a key"))
		}
		if store.del(key) {
			return wire.NewInt(1), nil
		}
		return wire.NewInt(0), nil
	})

	reg.Register("keys", func(ctx context.Context, conn *wireserver.Conn, cmd wire.Command) (wire.Value, error) {
		names := store.keys()
		values := make([]wire.Value, len(names))
		for i, n := range names {
			values[i] = wire.NewString(n)
		}
		return wire.NewSet(values...), nil
	})

	reg.Register("dbsize", func(ctx context.Context, conn *wireserver.Conn, cmd wire.Command) (wire.Value, error) {
		return wire.NewString(strconv.Itoa(store.len())), nil
	})

	if len(users) > 0 {
		reg.RequirePassword(func(user, pass string) bool {
			hash, ok := users[user]
			if !ok {
				return false
			}
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
		})
	}

	return reg
}
