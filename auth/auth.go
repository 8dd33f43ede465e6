// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: auth/auth.go
// Summary: Credential check behind the login screen.
// Usage: Built from the preferences "auth.users" table; the login page calls
// Verify and only a Pass verdict unlocks the home page.

package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/framegrace/texelshell/config"
)

// Verdict is the outcome of a credential check.
type Verdict int

const (
	// Pass grants access.
	Pass Verdict = iota
	// WrongPassword means the user exists but the password differs.
	WrongPassword
	// EmptyInput means no user name was given.
	EmptyInput
	// UnknownUser means the user is not in a non-empty table.
	UnknownUser
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "pass"
	case WrongPassword:
		return "wrong-password"
	case EmptyInput:
		return "empty-input"
	case UnknownUser:
		return "unknown-user"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Authenticator checks user names and passwords against an in-memory table.
// Stored values starting with "$2" are bcrypt hashes; anything else is
// compared as plain text.
type Authenticator struct {
	users map[string]string
}

// New copies users into a new authenticator.
func New(users map[string]string) *Authenticator {
	a := &Authenticator{users: make(map[string]string, len(users))}
	for u, p := range users {
		a.users[u] = p
	}
	return a
}

// FromConfig reads the auth.users table of a preferences document.
func FromConfig(cfg config.Config) *Authenticator {
	return New(cfg.GetStringMap(config.SectionAuth, config.KeyUsers))
}

// Len returns the number of known users.
func (a *Authenticator) Len() int { return len(a.users) }

// Verify checks a user name and password. An empty table admits any
// non-empty user name.
func (a *Authenticator) Verify(user, password string) Verdict {
	stored, known := a.users[user]
	switch {
	case known:
		if matches(stored, password) {
			return Pass
		}
		return WrongPassword
	case user == "":
		return EmptyInput
	case len(a.users) == 0:
		return Pass
	default:
		return UnknownUser
	}
}

func matches(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// HashPassword returns a bcrypt hash suitable for the users table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
