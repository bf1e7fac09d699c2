// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wireserver

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wormkit/worm/pkg/log"
)

// AdminRouter builds the HTTP diagnostics surface (SPEC_FULL §D.2): a
// liveness probe, a Prometheus scrape endpoint, and a JSON dump of the
// recent-command ring. It is deliberately separate from the wire
// protocol's TCP listener - applications mount it on whatever address
// their deployment wants reachable, following the same router-plus-
// logging-middleware shape as the reference HTTP surface.
func (s *Server) AdminRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		rw.WriteHeader(http.StatusOK)
		io.WriteString(rw, "ok\n")
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(s.PrometheusRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/debug/recent", func(rw http.ResponseWriter, req *http.Request) {
		snap := s.ring.Snapshot()
		out := make([]recentCommand, len(snap))
		for i, e := range snap {
			out[i] = recentCommand{
				ConnID: e.ConnID,
				Name:   e.Name,
				At:     time.UnixMilli(e.UnixMS).UTC(),
			}
		}
		rw.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(rw).Encode(out); err != nil {
			log.Warnf("wireserver: admin /debug/recent encode failed: %v", err)
		}
	}).Methods(http.MethodGet)

	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, params handlers.LogFormatterParams) {
			log.Debugf("wireserver: admin %s %s (%d, %dms)",
				params.Request.Method, params.URL.RequestURI(),
				params.StatusCode, time.Since(params.TimeStamp).Milliseconds())
		})
	})

	return r
}

type recentCommand struct {
	ConnID string    `json:"conn_id"`
	Name   string    `json:"name"`
	At     time.Time `json:"at"`
}
