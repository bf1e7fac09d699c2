// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config holds the wormd daemon's configuration: a JSON file,
// schema-validated against an embedded draft-07 schema before it is
// ever decoded, with the session signing key overridable from the
// environment the way the teacher's cc-backend reads SESSION_KEY.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"
)

// Keys is the package-level configuration, filled in by Init. Callers
// read it directly (cmd/wormd does), matching the teacher's
// config.Keys global.
var Keys = ProgramConfig{
	Addr:             ":7878",
	RequirePassword:  false,
	Users:            map[string]string{},
	LogLevel:         "info",
	LogDate:          false,
	RingCapacity:     256,
	DiagnosticsEvery: 30 * time.Second,
}

// ProgramConfig is the on-disk shape of wormd's configuration (SPEC_FULL
// §B "Configuration").
type ProgramConfig struct {
	Addr      string `json:"addr"`
	AdminAddr string `json:"admin_addr,omitempty"`

	RequirePassword bool              `json:"require_password,omitempty"`
	Users           map[string]string `json:"users,omitempty"`

	LogLevel string `json:"log_level,omitempty"`
	LogDate  bool   `json:"log_date,omitempty"`

	Group string `json:"group,omitempty"`
	User  string `json:"user,omitempty"`

	// SessionSigningKey enables JWT session tickets in the HELLO reply
	// (spec §D.1) when non-empty. SESSION_SIGNING_KEY in the
	// environment, if set, always wins over the config file value so
	// the secret never has to live on disk.
	SessionSigningKey string `json:"session_signing_key,omitempty"`

	RingCapacity int `json:"ring_capacity,omitempty"`

	// DiagnosticsInterval is the raw duration string from the config
	// file ("30s"); DiagnosticsEvery is the parsed form cmd/wormd
	// actually schedules against.
	DiagnosticsInterval string        `json:"diagnostics_interval,omitempty"`
	DiagnosticsEvery    time.Duration `json:"-"`
}

// Init reads and validates the config file at path, schema-checking it
// before decoding into Keys with unknown fields rejected, exactly as
// the teacher's config.Init does for its own config.schema.json. A
// missing file is not fatal: Keys keeps its documented defaults, which
// is enough to serve on ":7878" (all interfaces) with no auth for local
// testing.
func Init(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides()
		}
		return err
	}

	if err := validate(raw); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return err
	}

	if Keys.RingCapacity <= 0 {
		Keys.RingCapacity = 256
	}
	if Keys.DiagnosticsInterval != "" {
		d, err := time.ParseDuration(Keys.DiagnosticsInterval)
		if err != nil {
			return err
		}
		Keys.DiagnosticsEvery = d
	} else if Keys.DiagnosticsEvery == 0 {
		Keys.DiagnosticsEvery = 30 * time.Second
	}

	return applyEnvOverrides()
}

func applyEnvOverrides() error {
	if key := os.Getenv("SESSION_SIGNING_KEY"); key != "" {
		Keys.SessionSigningKey = key
	}
	if Keys.DiagnosticsEvery == 0 {
		Keys.DiagnosticsEvery = 30 * time.Second
	}
	return nil
}
