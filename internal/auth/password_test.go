// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()
	tests := []struct {
		name     string
		password string
		email    string
		wantErr  bool
	}{
		{"ok", "river-stone-42", "amina@example.com", false},
		{"exactly 8", "k3#vQ9zL", "", false},
		{"too short", "short1", "", true},
		{"too long", strings.Repeat("a", 129), "", true},
		{"max length", strings.Repeat("ab", 64), "", false},
		{"common", "Password123", "", true},
		{"contains email local part", "amina-2026!", "amina@example.com", true},
		{"short local part ignored", "jo-rocks-42", "jo@example.com", false},
		{"whitespace only", "          ", "", true},
		{"multibyte counted as runes", "ñandú-ñandú", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password, tt.email)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrWeakPassword) {
				t.Errorf("error %v does not wrap ErrWeakPassword", err)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("long-passphrase-", 6) // 96 bytes, over bcrypt's limit
	for _, pw := range []string{"river-stone-42", long} {
		hash, err := HashPassword(pw, bcrypt.MinCost)
		if err != nil {
			t.Fatalf("HashPassword(%d bytes) error = %v", len(pw), err)
		}
		if !CheckPassword(hash, pw) {
			t.Errorf("CheckPassword rejected the right password (%d bytes)", len(pw))
		}
		if CheckPassword(hash, pw+"x") {
			t.Errorf("CheckPassword accepted a wrong password (%d bytes)", len(pw))
		}
	}

	if CheckPassword("", "anything") {
		t.Error("empty hash must never match")
	}
}

func TestHashPassword_CostFallback(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("river-stone-42", 99)
	if err != nil {
		t.Fatal(err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatal(err)
	}
	if cost != DefaultBcryptCost {
		t.Errorf("cost = %d, want %d", cost, DefaultBcryptCost)
	}
}
