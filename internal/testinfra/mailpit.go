// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMailpitImage is the Mailpit SMTP capture server.
	DefaultMailpitImage = "axllent/mailpit:latest"

	mailpitSMTPPort = "1025"
	mailpitHTTPPort = "8025"
)

// MailpitContainer accepts SMTP on SMTPHost:SMTPPort and exposes captured
// mail through its HTTP API.
type MailpitContainer struct {
	testcontainers.Container
	SMTPHost string
	SMTPPort int
	APIURL   string
}

// CapturedEmail is a message summary from the Mailpit API.
type CapturedEmail struct {
	ID      string `json:"ID"`
	Subject string `json:"Subject"`
	Snippet string `json:"Snippet"`
	From    struct {
		Address string `json:"Address"`
	} `json:"From"`
	To []struct {
		Address string `json:"Address"`
	} `json:"To"`
}

// NewMailpitContainer starts a Mailpit server.
func NewMailpitContainer(ctx context.Context) (*MailpitContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMailpitImage,
		ExposedPorts: []string{mailpitSMTPPort + "/tcp", mailpitHTTPPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(mailpitSMTPPort+"/tcp"),
			wait.ForHTTP("/api/v1/info").WithPort(mailpitHTTPPort+"/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	s, err := startContainer(ctx, "mailpit", req, mailpitSMTPPort, mailpitHTTPPort)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(s.ports[mailpitSMTPPort])
	if err != nil {
		s.container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("parse smtp port: %w", err)
	}

	return &MailpitContainer{
		Container: s.container,
		SMTPHost:  s.host,
		SMTPPort:  port,
		APIURL:    fmt.Sprintf("http://%s:%s", s.host, s.ports[mailpitHTTPPort]),
	}, nil
}

// Messages lists captured mail, newest first.
func (m *MailpitContainer) Messages(ctx context.Context) ([]CapturedEmail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.APIURL+"/api/v1/messages", http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list messages: status %d", resp.StatusCode)
	}

	var body struct {
		Messages []CapturedEmail `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return body.Messages, nil
}
