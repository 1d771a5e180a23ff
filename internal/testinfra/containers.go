// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips t when no Docker daemon answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable reports whether `docker info` succeeds within 5s.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// CleanupContainer terminates container, logging instead of failing.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}

// started is a running container with its host and the host side of each
// requested port.
type started struct {
	container testcontainers.Container
	host      string
	ports     map[nat.Port]string
}

// startContainer runs req and resolves the mapped ports. The container is
// terminated if any lookup fails.
func startContainer(ctx context.Context, what string, req testcontainers.ContainerRequest, ports ...nat.Port) (*started, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s container: %w", what, err)
	}

	s := &started{container: container, ports: make(map[nat.Port]string, len(ports))}
	fail := func(err error) (*started, error) {
		container.Terminate(ctx) //nolint:errcheck
		return nil, err
	}

	if s.host, err = container.Host(ctx); err != nil {
		return fail(fmt.Errorf("get %s host: %w", what, err))
	}
	for _, p := range ports {
		mapped, err := container.MappedPort(ctx, p)
		if err != nil {
			return fail(fmt.Errorf("get %s port %s: %w", what, p, err))
		}
		s.ports[p] = mapped.Port()
	}
	return s, nil
}
