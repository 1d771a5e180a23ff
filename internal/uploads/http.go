// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/launchpad/internal/breaker"
	"github.com/tomtom215/launchpad/internal/config"
)

// HTTPBackend proxies objects to an upstream store.
type HTTPBackend struct {
	base    string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	breaker *breaker.Breaker
}

// NewHTTPBackend validates the upstream URL.
func NewHTTPBackend(cfg config.UploadsConfig) (*HTTPBackend, error) {
	u, err := url.Parse(cfg.UpstreamURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid upload upstream URL %q", cfg.UpstreamURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	return &HTTPBackend{
		base:    strings.TrimRight(cfg.UpstreamURL, "/"),
		token:   cfg.UpstreamToken,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker.New("upload-upstream", breaker.Settings{}),
	}, nil
}

// Name returns http.
func (b *HTTPBackend) Name() string { return BackendHTTP }

// Put streams r to PUT {base}/{key}.
func (b *HTTPBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	resp, err := b.do(ctx, http.MethodPut, key, r, size, contentType)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: PUT returned %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}

// Open streams GET {base}/{key}. The caller closes the body.
func (b *HTTPBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := b.do(ctx, http.MethodGet, key, nil, 0, "")
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		drain(resp)
		return nil, ErrObjectNotFound
	case resp.StatusCode != http.StatusOK:
		drain(resp)
		return nil, fmt.Errorf("%w: GET returned %d", ErrUpstream, resp.StatusCode)
	}
	return resp.Body, nil
}

// Delete sends DELETE {base}/{key}; 404 counts as deleted.
func (b *HTTPBackend) Delete(ctx context.Context, key string) error {
	resp, err := b.do(ctx, http.MethodDelete, key, nil, 0, "")
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode == http.StatusNotFound || (resp.StatusCode >= 200 && resp.StatusCode <= 299) {
		return nil
	}
	return fmt.Errorf("%w: DELETE returned %d", ErrUpstream, resp.StatusCode)
}

// do sends one request through the limiter and breaker. 5xx responses and
// transport errors count against the breaker; the response of a 5xx is
// still returned so callers can report the status.
func (b *HTTPBackend) do(ctx context.Context, method, key string, body io.Reader, size int64, contentType string) (*http.Response, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("upload rate limit: %w", err)
	}

	var serverErr *http.Response
	resp, err := breaker.Execute(b.breaker, isCallerError, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, b.base+"/"+key, body)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.ContentLength = size
			if contentType != "" {
				req.Header.Set("Content-Type", contentType)
			}
		}
		if b.token != "" {
			req.Header.Set("Authorization", "Bearer "+b.token)
		}
		resp, err := b.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			serverErr = resp
			return nil, fmt.Errorf("%w: %s returned %d", ErrUpstream, method, resp.StatusCode)
		}
		return resp, nil
	})
	if serverErr != nil {
		return serverErr, nil
	}
	switch {
	case err == nil:
		return resp, nil
	case isCallerError(err), errors.Is(err, ErrUpstream):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}

// isCallerError reports failures caused by the request itself rather than
// the upstream; they do not count against the breaker.
func isCallerError(err error) bool {
	return errors.Is(err, ErrTooLarge) || errors.Is(err, context.Canceled)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
