// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package config reads the iconctl.yaml config file and the ICONCTL_*
// environment settings.
package config
