// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/meta"
	"github.com/staranto/iconctl/internal/output"
)

// Row is one line of ls output.
type Row struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	Bytes    int    `json:"bytes"`
	Fetches  int    `json:"fetches"`
	Location string `json:"location"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

const (
	statusCached = "cached"
	statusFailed = "failed"
)

var lsDefaultAttrs = []string{"name", "size", "!bytes", "fetches", "status", "location", "!error"}

// BuildRows resolves each name and describes the outcome. Resolved icons are
// reported once, in cache order, followed by failures in argument order.
func BuildRows(ctx context.Context, cache *icon.Cache, names []string) []Row {
	var failures []Row
	seen := map[string]bool{}
	for _, name := range names {
		r := cache.Lookup(ctx, name)
		if r.Ok() || seen[name] {
			continue
		}
		seen[name] = true
		failures = append(failures, Row{
			Name:     name,
			Location: r.Location,
			Fetches:  cache.Fetches(name),
			Status:   statusFailed,
			Error:    r.Err.Error(),
		})
	}

	entries := cache.Entries()
	rows := make([]Row, 0, len(entries)+len(failures))
	for _, e := range entries {
		rows = append(rows, Row{
			Name:     e.Name,
			Size:     humanize.Bytes(uint64(e.Size)),
			Bytes:    e.Size,
			Fetches:  e.Fetches,
			Location: e.Location,
			Status:   statusCached,
		})
	}
	return append(rows, failures...)
}

// LsCommandAction resolves the given names and lists what ended up in the
// cache, plus the names that failed.
func LsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "ls") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(Row{})) {
		return nil
	}

	attrs, err := BuildAttrs(cmd, lsDefaultAttrs...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", attrs)

	names, err := RequireNames(cmd)
	if err != nil {
		return err
	}

	cache, err := NewCache(ctx, cmd)
	if err != nil {
		return err
	}

	rows := BuildRows(ctx, cache, names)

	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(rows); err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	w := Stdout(cmd)
	return output.SliceDiceSpit(raw, attrs, output.OptionsFromCommand(cmd, w), "", w, nil)
}

// LsCommandBuilder constructs the cli.Command for "ls".
func LsCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := append([]cli.Flag{
		newSchemaFlag(),
		newTldrFlag(),
	}, NewGlobalFlags("ls", meta.Config.Source)...)

	return &cli.Command{
		Name:      "ls",
		Usage:     "resolve icons and list the cache",
		UsageText: `iconctl ls [options] NAME...`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(flags, NewOutputFlags("ls", meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: LsCommandAction,
	}
}
