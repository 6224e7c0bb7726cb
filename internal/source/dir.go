// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/staranto/iconctl/internal/icon"
)

// Dir reads icons from the local filesystem. Locations are plain paths or
// file:// URLs.
type Dir struct {
	maxBytes int64
}

// NewDir returns a filesystem fetcher.
func NewDir(opts Options) *Dir {
	return &Dir{maxBytes: opts.maxBytes()}
}

// Fetch implements icon.Fetcher.
func (d *Dir) Fetch(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := strings.TrimPrefix(location, "file://")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, icon.ErrNotFound)
		}
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, d.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(body)) > d.maxBytes {
		return "", fmt.Errorf("%s exceeds %d bytes", path, d.maxBytes)
	}

	return string(body), nil
}
