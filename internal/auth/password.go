// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Password length limits, counted in characters.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// DefaultBcryptCost is used when the configured cost is out of range.
const DefaultBcryptCost = 12

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

// ErrWeakPassword wraps every password policy failure.
var ErrWeakPassword = errors.New("password does not meet policy")

// PasswordPolicy defines requirements for password strength.
type PasswordPolicy struct {
	MinLength int
	MaxLength int

	// ForbidCommonPasswords blocks well-known breached passwords.
	ForbidCommonPasswords bool

	// ForbidEmailSimilarity rejects passwords containing the email's local part.
	ForbidEmailSimilarity bool
}

// DefaultPasswordPolicy returns the policy applied at registration.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             MinPasswordLength,
		MaxLength:             MaxPasswordLength,
		ForbidCommonPasswords: true,
		ForbidEmailSimilarity: true,
	}
}

// Validate returns nil or an error wrapping ErrWeakPassword listing every
// failed rule.
func (p PasswordPolicy) Validate(password, email string) error {
	var problems []string

	n := utf8.RuneCountInString(password)
	if n < p.MinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", p.MinLength))
	}
	if p.MaxLength > 0 && n > p.MaxLength {
		problems = append(problems, fmt.Sprintf("password must be at most %d characters", p.MaxLength))
	}
	if strings.TrimSpace(password) == "" && n > 0 {
		problems = append(problems, "password cannot be only whitespace")
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "password is too common and easily guessable")
	}
	if p.ForbidEmailSimilarity && email != "" && isSimilarToEmail(password, email) {
		problems = append(problems, "password is too similar to email address")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(problems, "; "))
}

// HashPassword hashes password with bcrypt at cost. Inputs longer than
// bcrypt's 72 byte limit are pre-hashed with SHA-256.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// dummyHash is compared against when the account does not exist so that
// unknown and known emails take the same time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("launchpad-timing-equalizer"), bcrypt.MinCost)

func burnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, bcryptInput(password))
}

var commonPasswords = map[string]struct{}{
	"12345678": {}, "123456789": {}, "1234567890": {}, "password": {},
	"password1": {}, "password123": {}, "passw0rd": {}, "p@ssw0rd": {},
	"qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {},
	"welcome123": {}, "abcd1234": {}, "1q2w3e4r": {}, "11111111": {},
	"00000000": {}, "123123123": {}, "letmein123": {}, "changeme": {},
	"trustno1": {}, "superman": {}, "administrator": {}, "admin123": {},
	"launchpad": {}, "launchpad1": {}, "launchpad123": {},
}

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(password)]
	return ok
}

func isSimilarToEmail(password, email string) bool {
	local := strings.ToLower(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	// Very short local parts ("jo") match too much to be meaningful.
	if len(local) < 4 {
		return false
	}
	return strings.Contains(strings.ToLower(password), local)
}
