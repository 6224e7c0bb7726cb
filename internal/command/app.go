// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/config"
	"github.com/staranto/iconctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the iconctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	// A missing config file is normal. A broken one is not.
	cfg, err := config.Load(ns)
	if err != nil {
		if !errors.Is(err, config.ErrNoConfig) {
			return nil, err
		}
		log.Debugf("config: %v", err)
	}

	env, err := config.ParseEnv()
	if err != nil {
		return nil, err
	}

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Env:         env,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "iconctl",
		Usage: "Icon Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "iconctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		ApplyCommandBuilder(app, meta),
		GetCommandBuilder(app, meta),
		LsCommandBuilder(app, meta),
		ServeCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
