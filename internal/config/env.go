// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings that only come from the environment.
type Env struct {
	ConfigPath  string `env:"ICONCTL_CFG"`
	LogLevel    string `env:"ICONCTL_LOG" envDefault:"ERROR"`
	FilterDelim string `env:"ICONCTL_FILTER_DELIM" envDefault:","`
	NoColor     string `env:"NO_COLOR"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Colorless reports whether NO_COLOR is set to any non-empty value.
func (e Env) Colorless() bool {
	return e.NoColor != ""
}
