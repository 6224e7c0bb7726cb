// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/staranto/iconctl/internal/icon"
)

// HTTP fetches icons with GET requests.
type HTTP struct {
	client    *retryablehttp.Client
	userAgent string
	maxBytes  int64
}

// NewHTTP builds an HTTP fetcher on a pooled transport.
func NewHTTP(opts Options) *HTTP {
	client := retryablehttp.NewClient()
	client.HTTPClient = cleanhttp.DefaultPooledClient()
	client.HTTPClient.Timeout = opts.Timeout
	client.RetryMax = opts.Retries
	client.Logger = leveledLogger{}
	// Hand the final response back so status codes can be classified.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &HTTP{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  opts.maxBytes(),
	}
}

// Fetch implements icon.Fetcher.
func (h *HTTP) Fetch(ctx context.Context, location string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "image/svg+xml, text/*;q=0.9, */*;q=0.1")
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return "", fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%s returned %s: %w", location, resp.Status, icon.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", fmt.Errorf("fetch failed: %s returned %s", location, resp.Status)
	}

	if ct := resp.Header.Get("Content-Type"); !textual(ct) {
		return "", fmt.Errorf("%w: content type %s", icon.ErrNotText, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > h.maxBytes {
		return "", fmt.Errorf("response from %s exceeds %d bytes", location, h.maxBytes)
	}

	return string(body), nil
}

// leveledLogger routes retryablehttp logging through apex.
type leveledLogger struct{}

func (leveledLogger) fields(kv []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	log.WithFields(l.fields(kv)).Error(msg)
}

func (l leveledLogger) Info(msg string, kv ...interface{}) {
	log.WithFields(l.fields(kv)).Debug(msg)
}

func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	log.WithFields(l.fields(kv)).Debug(msg)
}

func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	log.WithFields(l.fields(kv)).Warn(msg)
}
