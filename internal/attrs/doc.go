// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package attrs parses --attrs column specifications and applies their value
// transforms.
package attrs
