// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/launchpad/internal/models"
)

const testSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"

func testUser() *models.User {
	return &models.User{
		ID:       "user-1",
		TenantID: "tenant-1",
		Email:    "hr@acme.example",
		Role:     models.RoleCompany,
		Status:   models.UserActive,
	}
}

func TestNewJWTManager(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"valid secret", testSecret, false},
		{"empty secret", "", true},
		{"short secret", "too-short", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJWTManager(tt.secret, time.Hour)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if m.Timeout() != time.Hour {
				t.Errorf("Timeout() = %v, want 1h", m.Timeout())
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	m, err := NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, expiresAt, err := m.GenerateToken(testUser(), "session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("expiresAt = %v, want about one hour from now", expiresAt)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.ID != "session-1" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Role != models.RoleCompany || claims.TenantID != "tenant-1" {
		t.Errorf("role/tenant = %s/%s", claims.Role, claims.TenantID)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	t.Parallel()

	m, _ := NewJWTManager(testSecret, time.Hour)
	other, _ := NewJWTManager(strings.Repeat("x", 40), time.Hour)
	foreign, _, _ := other.GenerateToken(testUser(), "s")

	expired, _ := NewJWTManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.GenerateToken(testUser(), "s")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
	noneToken, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidCredentials},
		{"wrong secret", foreign, ErrInvalidCredentials},
		{"expired", old, ErrExpiredCredentials},
		{"alg none", noneToken, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateToken() error = %v, want %v", err, tt.want)
			}
		})
	}
}
