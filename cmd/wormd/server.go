// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/wormkit/worm/internal/config"
	"github.com/wormkit/worm/internal/kvdemo"
	"github.com/wormkit/worm/pkg/log"
	"github.com/wormkit/worm/pkg/runtimeEnv"
	"github.com/wormkit/worm/pkg/wireserver"
)

var (
	wormServer *wireserver.Server
	adminHTTP  *http.Server
)

// serverInit builds the wireserver.Server around the kvdemo example
// Handler. A real deployment would swap kvdemo.NewHandler for its own
// wireserver.Handler; this daemon only has the demo to serve.
func serverInit() {
	store := kvdemo.NewStore()
	handler := kvdemo.NewHandler(store, config.Keys.Users)
	if config.Keys.RequirePassword && len(config.Keys.Users) == 0 {
		log.Warn("require_password is set but no users are configured; every AUTH will fail")
	}

	cfg := wireserver.Config{
		Name:         "wormd",
		Version:      version,
		RingCapacity: config.Keys.RingCapacity,
	}
	if config.Keys.SessionSigningKey != "" {
		cfg.TicketSecret = []byte(config.Keys.SessionSigningKey)
		cfg.TicketTTL = time.Hour
	}

	wormServer = wireserver.NewServer(handler, cfg)
}

// serverStart binds the worm TCP listener, drops privileges (spec
// SPEC_FULL §D.4: the listener must be bound to a possibly-privileged
// port before the process gives up root), notifies systemd, and only
// then starts accepting. The admin HTTP surface, if configured, binds
// its own address in a separate goroutine via ListenAndServe, so it is
// not guaranteed to be bound before privileges are dropped. It blocks
// until the worm listener's accept loop returns.
func serverStart(ctx context.Context) error {
	ln, err := net.Listen("tcp", config.Keys.Addr)
	if err != nil {
		return err
	}

	if config.Keys.AdminAddr != "" {
		adminHTTP = &http.Server{
			Addr:         config.Keys.AdminAddr,
			Handler:      wormServer.AdminRouter(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.Infof("wormd: admin http surface listening on %s", config.Keys.AdminAddr)
			if err := adminHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("wormd: admin http surface failed: %v", err)
			}
		}()
	}

	if err := runtimeEnv.DropPrivileges(config.Keys.User, config.Keys.Group); err != nil {
		return err
	}

	log.Infof("wormd: worm protocol listening on %s", config.Keys.Addr)
	runtimeEnv.SystemdNotifiy(true, "running")
	return wormServer.RunListener(ctx, ln)
}

// serverShutdown gracefully stops the admin HTTP surface; the worm
// listener itself is stopped by cancelling the context passed to Run.
func serverShutdown() {
	runtimeEnv.SystemdNotifiy(false, "shutting down")
	if adminHTTP != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adminHTTP.Shutdown(shutdownCtx); err != nil {
			log.Warnf("wormd: admin http surface shutdown: %v", err)
		}
	}
}
