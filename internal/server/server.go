// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/metrics"
	"github.com/staranto/iconctl/internal/target"
)

const (
	// DefaultListen is used when Options.Listen is empty.
	DefaultListen = ":8080"
	// ShutdownGrace bounds how long in-flight requests get after the run
	// context ends.
	ShutdownGrace = 5 * time.Second

	readHeaderTimeout = 10 * time.Second
	contentType       = "image/svg+xml"
)

// Options configure a Server.
type Options struct {
	Listen string
	// MaxAge is sent as Cache-Control max-age on icon responses. Zero sends
	// no-cache.
	MaxAge time.Duration
}

// Server serves icons from a cache.
type Server struct {
	cache   *icon.Cache
	metrics *metrics.Metrics
	opts    Options

	httpServer *http.Server
}

// New builds a Server. m may be nil, in which case /metrics is not mounted.
// m should also be registered as the cache's observer.
func New(cache *icon.Cache, m *metrics.Metrics, opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}

	s := &Server{
		cache:   cache,
		metrics: m,
		opts:    opts,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routes served by s.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /icons/{name...}", s.handleIcon)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	return mux
}

// iconName strips the optional extension and rejects names that would climb
// out of the base location.
func iconName(raw string) (string, bool) {
	name := strings.TrimSuffix(raw, icon.Extension)
	if name == "" || strings.Contains(name, "\\") || strings.HasPrefix(name, "/") {
		return "", false
	}
	if path.Clean(name) != name {
		return "", false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", false
		}
	}
	return name, true
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	name, ok := iconName(r.PathValue("name"))
	if !ok {
		http.Error(w, "invalid icon name", http.StatusBadRequest)
		return
	}

	buf := target.NewBuffer("")
	res, err := s.cache.ApplyResult(r.Context(), buf, name)
	if s.metrics != nil {
		s.metrics.Cached.Set(float64(s.cache.Len()))
	}

	switch {
	case errors.Is(res.Err, icon.ErrNotFound):
		http.NotFound(w, r)
		return
	case res.Err != nil:
		http.Error(w, "icon could not be fetched", http.StatusBadGateway)
		return
	case err != nil:
		log.WithField("name", name).WithError(err).Error("failed to buffer icon")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if s.opts.MaxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.opts.MaxAge.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	_, _ = w.Write([]byte(buf.Content()))
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.opts.Listen
}

// Run listens on the configured address and serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	log.WithField("addr", ln.Addr().String()).Info("serving icons")
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
