// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	fp := filepath.Join(dir, "config.json")
	assert.NoError(t, os.WriteFile(fp, []byte(body), 0o600))
	return fp
}

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	Keys = ProgramConfig{Addr: ":7878", Users: map[string]string{}}
	err := Init(filepath.Join(t.TempDir(), "missing.json"))
	assert.NoError(t, err)
	assert.Equal(t, ":7878", Keys.Addr)
}

func TestInitValidConfig(t *testing.T) {
	fp := writeConfig(t, `{
		"addr": ":9999",
		"require_password": true,
		"users": {"alice": "$2a$10$abc"},
		"diagnostics_interval": "5s"
	}`)

	err := Init(fp)
	assert.NoError(t, err)
	assert.Equal(t, ":9999", Keys.Addr)
	assert.True(t, Keys.RequirePassword)
	assert.Equal(t, "$2a$10$abc", Keys.Users["alice"])
	assert.Equal(t, 5*time.Second, Keys.DiagnosticsEvery)
}

func TestInitRejectsUnknownField(t *testing.T) {
	fp := writeConfig(t, `{"addr": ":9999", "bogus": true}`)
	err := Init(fp)
	assert.Error(t, err)
}

func TestInitRejectsSchemaViolation(t *testing.T) {
	fp := writeConfig(t, `{"addr": 1234}`)
	err := Init(fp)
	assert.Error(t, err)
}

func TestInitMissingRequiredAddr(t *testing.T) {
	fp := writeConfig(t, `{"log_level": "debug"}`)
	err := Init(fp)
	assert.Error(t, err)
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	fp := writeConfig(t, `{"addr": ":9999", "session_signing_key": "from-file"}`)
	t.Setenv("SESSION_SIGNING_KEY", "from-env")

	err := Init(fp)
	assert.NoError(t, err)
	assert.Equal(t, "from-env", Keys.SessionSigningKey)
}
