// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package target provides display targets that accept icon markup: writers,
// files, per-name files in a directory and in-memory buffers.
package target
