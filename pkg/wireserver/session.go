// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package wireserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issueTicket mints a short-lived session ticket for user: a signed JWT
// that HELLO/AUTH accept in place of a plaintext password (SPEC_FULL
// §D.1). This lets a client that already authenticated once reconnect
// without resending credentials, the way a web session cookie avoids
// resending a login form.
func (s *Server) issueTicket(user string) (string, error) {
	if s.ticketSecret == nil {
		return "", errors.New("wireserver: session tickets disabled (no secret configured)")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user,
		"iat": now.Unix(),
		"exp": now.Add(s.ticketTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.ticketSecret)
}

// verifyTicket validates a session ticket and returns the username it
// was issued for. It never treats a plain password string as a ticket:
// if the token does not parse, it is simply not a ticket, and the
// caller MUST fall through to the handler's password check.
func (s *Server) verifyTicket(token string) (string, bool) {
	if s.ticketSecret == nil || token == "" {
		return "", false
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("wireserver: unexpected signing method")
		}
		return s.ticketSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}
