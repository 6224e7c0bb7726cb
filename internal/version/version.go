// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package version holds the build version, set at link time with
// -ldflags "-X github.com/staranto/iconctl/internal/version.Version=...".
package version

var Version = "dev"

// UserAgent is sent with every HTTP fetch.
func UserAgent() string {
	return "iconctl/" + Version
}
