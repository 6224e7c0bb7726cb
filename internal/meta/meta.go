// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/iconctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Env     config.Env
	Context context.Context
	// StartingDir is the working directory at startup. Relative --dir and
	// --target paths resolve against it.
	StartingDir string
}
