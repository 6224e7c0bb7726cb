// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/meta"
	"github.com/staranto/iconctl/internal/metrics"
	"github.com/staranto/iconctl/internal/server"
)

// NewServer builds the HTTP server for the serve flags. Any positional names
// are resolved up front so the first requests for them are hits.
func NewServer(ctx context.Context, cmd *cli.Command) (*server.Server, error) {
	m := metrics.NewMetrics(cmd.String("namespace"))
	cache, err := NewCache(ctx, cmd, icon.WithObserver(m))
	if err != nil {
		return nil, err
	}

	for _, name := range cmd.Args().Slice() {
		if cache.Resolve(ctx, name) == "" {
			log.WithField("name", name).Warn("warm up failed")
		}
	}
	m.Cached.Set(float64(cache.Len()))

	return server.New(cache, m, server.Options{
		Listen: cmd.String("listen"),
		MaxAge: time.Duration(cmd.Int("max-age")) * time.Second,
	}), nil
}

// ServeCommandAction runs the HTTP server until interrupted.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "serve") {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, cmd)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"listen": srv.Addr(),
		"base":   cmd.String("base"),
	}).Info("starting server")

	return srv.Run(ctx)
}

// ServeCommandBuilder constructs the cli.Command for "serve".
func ServeCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	path := meta.Config.Source
	return &cli.Command{
		Name:      "serve",
		Usage:     "serve icons over HTTP",
		UsageText: `iconctl serve [options] [NAME...]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "address to listen on",
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("ICONCTL_LISTEN"),
					yaml.YAML("serve.listen", altsrc.StringSourcer(path)),
				),
				Value: server.DefaultListen,
			},
			&cli.IntFlag{
				Name:  "max-age",
				Usage: "Cache-Control max-age in seconds for icon responses",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("serve.max_age", altsrc.StringSourcer(path)),
				),
				Value: 3600,
				Validator: func(value int) error {
					return FlagValidators(value, NonNegativeValidator)
				},
			},
			&cli.StringFlag{
				Name:   "namespace",
				Usage:  "prometheus metric namespace",
				Hidden: true,
				Sources: cli.NewValueSourceChain(
					yaml.YAML("serve.namespace", altsrc.StringSourcer(path)),
				),
				Value: "iconctl",
			},
			newTldrFlag(),
		}, NewGlobalFlags("serve", path)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: ServeCommandAction,
	}
}
