// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build integration

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// WebhookCapture is one request received by the mock receiver.
type WebhookCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// MockWebhookServer records notification webhook deliveries.
type MockWebhookServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	captures []WebhookCapture

	// ResponseStatus is returned for every request (default 200).
	ResponseStatus int
	// ResponseFunc, when set, writes the response instead.
	ResponseFunc func(w http.ResponseWriter, r *http.Request)
}

// NewMockWebhookServer starts a receiver that is closed with the test.
func NewMockWebhookServer(t *testing.T) *MockWebhookServer {
	t.Helper()

	m := &MockWebhookServer{ResponseStatus: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		m.mu.Lock()
		m.captures = append(m.captures, WebhookCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		fn, status := m.ResponseFunc, m.ResponseStatus
		m.mu.Unlock()

		if fn != nil {
			fn(w, r)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(m.Server.Close)
	return m
}

// SetResponseStatus changes the status returned for later requests.
func (m *MockWebhookServer) SetResponseStatus(status int) {
	m.mu.Lock()
	m.ResponseStatus = status
	m.mu.Unlock()
}

// URL returns the receiver base URL.
func (m *MockWebhookServer) URL() string {
	return m.Server.URL
}

// Captures returns a copy of the recorded requests.
func (m *MockWebhookServer) Captures() []WebhookCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WebhookCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// WaitForCaptures polls until n requests arrived or timeout elapses.
func (m *MockWebhookServer) WaitForCaptures(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		count := len(m.captures)
		m.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}
