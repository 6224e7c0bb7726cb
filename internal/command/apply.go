// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/meta"
	"github.com/staranto/iconctl/internal/target"
)

// ApplyCommandAction writes icons into files. With --target a single icon
// replaces one file; otherwise each name goes to <dir>/<name>.svg. --target
// takes precedence over --dir. A file is only replaced when its icon
// resolves, and a name whose file cannot be written counts as failed.
func ApplyCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "apply") {
		return nil
	}

	names, err := RequireNames(cmd)
	if err != nil {
		return err
	}

	cache, err := NewCache(ctx, cmd)
	if err != nil {
		return err
	}

	var targetFor func(name string) icon.Target
	if path := cmd.String("target"); path != "" {
		if len(names) != 1 {
			return errors.New("--target takes exactly one icon name")
		}
		f := target.NewFile(resolvePath(m, path))
		targetFor = func(string) icon.Target { return f }
	} else {
		dir := target.NewDir(resolvePath(m, cmd.String("dir")))
		targetFor = func(name string) icon.Target { return dir.For(name) }
	}

	failed := 0
	for _, name := range names {
		r, err := cache.ApplyResult(ctx, targetFor(name), name)
		switch {
		case !r.Ok():
			warnFailed(cmd, r.Err)
			failed++
		case err != nil:
			warnFailed(cmd, fmt.Errorf("write icon %q: %w", name, err))
			failed++
		}
	}

	if failed > 0 {
		return &FailedError{Failed: failed, Total: len(names)}
	}
	return nil
}

// resolvePath anchors relative paths at the directory iconctl started in.
func resolvePath(m meta.Meta, path string) string {
	if filepath.IsAbs(path) || m.StartingDir == "" {
		return path
	}
	return filepath.Join(m.StartingDir, path)
}

// ApplyCommandBuilder constructs the cli.Command for "apply".
func ApplyCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "write icons into files",
		UsageText: `iconctl apply [options] (--target FILE NAME | --dir DIR NAME...)`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "target",
				Usage: "file to replace with the icon",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			NameSpacedValueChainFlagFromConfigFile("apply", meta.Config.Source, &cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "directory to write <name>.svg files into",
				Sources: cli.NewValueSourceChain(),
				Value:   ".",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			}),
			newTldrFlag(),
		}, NewGlobalFlags("apply", meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: ApplyCommandAction,
	}
}
