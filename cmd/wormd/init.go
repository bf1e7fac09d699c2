// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"os"

	"github.com/wormkit/worm/pkg/log"
)

const envString = `
# Uncomment and set to a random secret to enable JWT session tickets on HELLO.
# SESSION_SIGNING_KEY=change-me
`

const configString = `
{
    "addr": ":7878",
    "admin_addr": "127.0.0.1:7879",
    "require_password": false,
    "users": {},
    "log_level": "info",
    "ring_capacity": 256,
    "diagnostics_interval": "30s"
}
`

// initEnv writes a default config.json and .env next to the binary,
// refusing to clobber either if it already exists.
func initEnv() {
	if _, err := os.Stat("config.json"); err == nil {
		log.Fatal("./config.json already exists, refusing to overwrite it")
	}
	if err := os.WriteFile("config.json", []byte(configString), 0o644); err != nil {
		log.Fatalf("could not write default ./config.json: %s", err.Error())
	}

	if _, err := os.Stat(".env"); err == nil {
		log.Fatal("./.env already exists, refusing to overwrite it")
	}
	if err := os.WriteFile(".env", []byte(envString), 0o600); err != nil {
		log.Fatalf("could not write default ./.env: %s", err.Error())
	}

	log.Info("wrote ./config.json and ./.env")
}
