// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/meta"
	"github.com/staranto/iconctl/internal/target"
)

// GetCommandAction resolves every name and writes its markup to stdout.
// Repeated names are served from the cache. Names that fail are reported on
// stderr and make the command fail after the rest have been written.
func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "get") {
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

	out := target.NewWriter(Stdout(cmd))
	failed := 0
	for _, name := range names {
		r := cache.Lookup(ctx, name)
		if !r.Ok() {
			warnFailed(cmd, r.Err)
			failed++
			continue
		}
		if err := out.SetContent(r.Content); err != nil {
			return err
		}
	}

	log.Debugf("stats: %+v", cache.Stats())

	if failed > 0 {
		return &FailedError{Failed: failed, Total: len(names)}
	}
	return nil
}

// GetCommandBuilder constructs the cli.Command for "get".
func GetCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print icon markup",
		UsageText: `iconctl get [options] NAME...`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			newTldrFlag(),
		}, NewGlobalFlags("get", meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: GetCommandAction,
	}
}
