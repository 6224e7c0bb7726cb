// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	awsx "github.com/staranto/iconctl/internal/aws"
	"github.com/staranto/iconctl/internal/icon"
)

// GetObjectAPI is the slice of the S3 client the fetcher needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// S3 reads icons from s3://bucket/key locations.
type S3 struct {
	api      GetObjectAPI
	maxBytes int64
	timeout  time.Duration
}

// NewS3 wraps an existing client.
func NewS3(api GetObjectAPI, opts Options) *S3 {
	return &S3{api: api, maxBytes: opts.maxBytes(), timeout: opts.Timeout}
}

// NewS3FromConfig loads AWS config from the environment plus opts and
// returns a fetcher backed by a real client.
func NewS3FromConfig(ctx context.Context, opts Options) (*S3, error) {
	cfg, err := awsx.LoadAWSConfig(ctx,
		awsx.WithProfile(opts.Profile),
		awsx.WithRegion(opts.Region),
		awsx.WithMaxAttempts(opts.Retries+1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awsx.NewS3(cfg, awsx.WithS3BaseEndpoint(opts.Endpoint))
	return NewS3(client, opts), nil
}

// ParseS3Location splits s3://bucket/key into its parts.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 location %s: %w", location, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 location %s: want s3://bucket/key", location)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid s3 location %s: missing key", location)
	}
	return u.Host, key, nil
}

// Fetch implements icon.Fetcher.
func (s *S3) Fetch(ctx context.Context, location string) (string, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return "", fmt.Errorf("s3://%s/%s: %w", bucket, key, icon.ErrNotFound)
		}
		return "", fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer out.Body.Close()

	if ct := awsv2.ToString(out.ContentType); !textual(ct) {
		return "", fmt.Errorf("%w: content type %s", icon.ErrNotText, ct)
	}

	body, err := io.ReadAll(io.LimitReader(out.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read S3 object body: %w", err)
	}
	if int64(len(body)) > s.maxBytes {
		return "", fmt.Errorf("s3://%s/%s exceeds %d bytes", bucket, key, s.maxBytes)
	}

	log.Debugf("read %d bytes from s3://%s/%s", len(body), bucket, key)
	return string(body), nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}
