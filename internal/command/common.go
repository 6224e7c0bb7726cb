// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/attrs"
	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/meta"
	"github.com/staranto/iconctl/internal/output"
	"github.com/staranto/iconctl/internal/source"
	"github.com/staranto/iconctl/internal/version"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr iconctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "iconctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the attribute names for the provided row type
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(Stdout(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	al.SetGlobalTransformSpec()
	return
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// Stdout is where a command writes its results.
func Stdout(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// Stderr is where a command writes per-icon warnings.
func Stderr(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.ErrWriter != nil {
		return root.ErrWriter
	}
	return os.Stderr
}

// SourceOptions collects the fetch settings from the global flags.
func SourceOptions(cmd *cli.Command) source.Options {
	return source.Options{
		Timeout:   cmd.Duration("timeout"),
		Retries:   cmd.Int("retries"),
		UserAgent: version.UserAgent(),
		Region:    cmd.String("region"),
		Profile:   cmd.String("profile"),
		Endpoint:  cmd.String("endpoint"),
	}
}

// NewCache builds the icon cache for --base with a fetcher chosen by its
// scheme.
func NewCache(ctx context.Context, cmd *cli.Command, opts ...icon.Option) (*icon.Cache, error) {
	base := cmd.String("base")
	fetcher, err := source.New(ctx, base, SourceOptions(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	log.WithFields(log.Fields{
		"base": base,
		"kind": source.Kind(base),
	}).Debug("icon cache ready")
	return icon.New(base, fetcher, opts...), nil
}

// RequireNames returns the positional icon names, or an error if there are
// none.
func RequireNames(cmd *cli.Command) ([]string, error) {
	names := cmd.Args().Slice()
	if len(names) == 0 {
		return nil, errors.New("no icon names given")
	}
	return names, nil
}

// FailedError reports how many icons of a batch could not be resolved.
type FailedError struct {
	Failed int
	Total  int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d of %d icons could not be resolved", e.Failed, e.Total)
}

// warnFailed prints a per-icon warning the way the filters do.
func warnFailed(cmd *cli.Command, err error) {
	fmt.Fprintf(Stderr(cmd), "warning: %v\n", err)
}
