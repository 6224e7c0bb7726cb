// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package source provides the icon.Fetcher implementations behind a base
// location: HTTP(S) servers, S3 buckets and local directories.
package source
