// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/iconctl/internal/icon"
)

// DefaultMaxBytes caps the size of a single icon body.
const DefaultMaxBytes = 1 << 20

// Options tune the fetcher built by New. Zero values select defaults.
type Options struct {
	// Timeout bounds a single HTTP request. Zero means no client timeout.
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed request.
	Retries int
	// MaxBytes caps the body size. Zero means DefaultMaxBytes.
	MaxBytes int64
	// UserAgent is sent with HTTP requests.
	UserAgent string

	// Region, Profile and Endpoint configure S3 access.
	Region   string
	Profile  string
	Endpoint string
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return o.MaxBytes
}

// Kind names the fetcher New would choose for base.
func Kind(base string) string {
	switch {
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
		return "http"
	case strings.HasPrefix(base, "s3://"):
		return "s3"
	default:
		return "dir"
	}
}

// New returns the fetcher matching the scheme of base.
func New(ctx context.Context, base string, opts Options) (icon.Fetcher, error) {
	if base == "" {
		return nil, fmt.Errorf("no base location configured")
	}

	kind := Kind(base)
	log.Debugf("using %s source for %s", kind, base)

	switch kind {
	case "http":
		return NewHTTP(opts), nil
	case "s3":
		return NewS3FromConfig(ctx, opts)
	default:
		return NewDir(opts), nil
	}
}

// textual reports whether a Content-Type may carry SVG markup. An empty or
// generic binary type is accepted and left to the body check.
func textual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mt, "text/"):
		return true
	case mt == "application/octet-stream":
		return true
	case strings.HasSuffix(mt, "/xml"), strings.HasSuffix(mt, "+xml"):
		return true
	}
	return false
}
