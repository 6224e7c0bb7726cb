// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/metrics"
)

const gear = `<svg xmlns="http://www.w3.org/2000/svg"><circle r="4"/></svg>`

func newTestServer(t *testing.T, opts Options) (*Server, *metrics.Metrics, *atomic.Int32) {
	t.Helper()
	var fetches atomic.Int32
	m := metrics.NewMetrics("iconctl")
	c := icon.New("mem://", icon.FetcherFunc(func(_ context.Context, location string) (string, error) {
		fetches.Add(1)
		switch location {
		case "mem://gear.svg", "mem://ui/gear.svg":
			return gear, nil
		case "mem://broken.svg":
			return "", errors.New("unexpected status 503")
		case "mem://binary.svg":
			return "\xff\xfe", nil
		default:
			return "", icon.ErrNotFound
		}
	}), icon.WithObserver(m))
	return New(c, m, opts), m, &fetches
}

func get(t *testing.T, h http.Handler, target string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Result()
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestServer_Icons(t *testing.T) {
	s, _, _ := newTestServer(t, Options{MaxAge: time.Hour})
	h := s.Handler()

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/icons/gear", http.StatusOK, gear},
		{"/icons/gear.svg", http.StatusOK, gear},
		{"/icons/ui/gear", http.StatusOK, gear},
		{"/icons/missing", http.StatusNotFound, ""},
		{"/icons/broken", http.StatusBadGateway, ""},
		{"/icons/binary", http.StatusBadGateway, ""},
		{"/icons/.svg", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, h, tt.path)
			got := body(t, resp)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, got)
				assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
				assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
			}
		})
	}
}

func TestServer_Memoizes(t *testing.T) {
	s, m, fetches := newTestServer(t, Options{})
	h := s.Handler()

	for i := 0; i < 3; i++ {
		resp := get(t, h, "/icons/gear")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
		body(t, resp)
	}

	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cached))
}

func TestServer_FailuresRetry(t *testing.T) {
	s, m, fetches := newTestServer(t, Options{})
	h := s.Handler()

	for i := 0; i < 2; i++ {
		resp := get(t, h, "/icons/missing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body(t, resp)
	}

	assert.Equal(t, int32(2), fetches.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Failures.WithLabelValues("not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Cached))
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _, _ := newTestServer(t, Options{})
	h := s.Handler()

	resp := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body(t, resp))

	body(t, get(t, h, "/icons/gear"))

	resp = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got := body(t, resp)
	assert.Contains(t, got, "iconctl_icon_misses_total 1")
	assert.Contains(t, got, "iconctl_icons_cached 1")
}

func TestServer_NoMetrics(t *testing.T) {
	c := icon.New("mem://", icon.FetcherFunc(func(context.Context, string) (string, error) {
		return gear, nil
	}))
	h := New(c, nil, Options{}).Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/metrics").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, h, "/icons/gear").StatusCode)
}

func TestIconName(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOk bool
	}{
		{"gear", "gear", true},
		{"gear.svg", "gear", true},
		{"ui/gear", "ui/gear", true},
		{"", "", false},
		{".svg", "", false},
		{"../secret", "", false},
		{"ui/../../secret", "", false},
		{"/etc/passwd", "", false},
		{"ui//gear", "", false},
		{"ui\\gear", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := iconName(tt.raw)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_ServeShutsDown(t *testing.T) {
	s, _, _ := newTestServer(t, Options{Listen: "127.0.0.1:0"})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	url := "http://" + ln.Addr().String() + "/icons/gear"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.Contains(string(b), "<svg")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownGrace + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNew_DefaultListen(t *testing.T) {
	s, _, _ := newTestServer(t, Options{})
	assert.Equal(t, DefaultListen, s.Addr())
}
