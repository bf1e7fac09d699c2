// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command wormd is the reference daemon for pkg/wireserver: it loads
// configuration, wires up the kvdemo example Handler, and runs the worm
// protocol listener (plus an optional admin HTTP surface) until it
// receives SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/gops/agent"
	"github.com/joho/godotenv"

	"github.com/wormkit/worm/internal/config"
	"github.com/wormkit/worm/pkg/log"
)

// version is overwritten at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cliInit()

	if flagVersion {
		fmt.Printf("wormd %s\n", version)
		return
	}

	if flagInit {
		initEnv()
		return
	}

	log.SetLogDateTime(flagLogDateTime)
	log.SetLogLevel(flagLogLevel)

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing './.env' file failed: %s", err.Error())
	}

	if err := config.Init(flagConfigFile); err != nil {
		log.Fatalf("loading %s failed: %s", flagConfigFile, err.Error())
	}

	serverInit()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("could not create diagnostics scheduler: %s", err.Error())
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(config.Keys.DiagnosticsEvery),
		gocron.NewTask(logDiagnostics),
	); err != nil {
		log.Fatalf("could not register diagnostics job: %s", err.Error())
	}
	scheduler.Start()

	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("wormd: shutting down")
		cancel()
		serverShutdown()
		if err := scheduler.Shutdown(); err != nil {
			log.Warnf("wormd: scheduler shutdown: %v", err)
		}
	}()

	if err := serverStart(ctx); err != nil {
		log.Fatalf("wormd: server stopped: %s", err.Error())
	}

	log.Info("wormd: graceful shutdown complete")
}

func logDiagnostics() {
	snap := wormServer.Snapshot()
	log.Infof("wormd: diagnostics connections_open=%d connections_total=%d commands_total=%d errors_total=%d disconnects_total=%d recent=%d",
		snap.ConnectionsOpen, snap.ConnectionsTotal, snap.CommandsTotal, snap.ErrorsTotal, snap.DisconnectsTotal, wormServer.Ring().Len())
}
