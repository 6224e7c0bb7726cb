// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package server exposes an icon cache over HTTP. Icons are served from
// /icons/{name}, with /healthz for liveness and /metrics for Prometheus.
package server
