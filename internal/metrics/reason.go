// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"errors"

	"github.com/staranto/iconctl/internal/icon"
)

// Reason maps a lookup failure to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, icon.ErrNotFound):
		return "not_found"
	case errors.Is(err, icon.ErrNotText):
		return "not_text"
	case errors.Is(err, icon.ErrEmptyName):
		return "empty_name"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
