// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/icon"
	"github.com/staranto/iconctl/internal/meta"
	"github.com/staranto/iconctl/internal/server"
)

const (
	gearSVG  = `<svg id="gear"/>`
	arrowSVG = `<svg id="arrow"/>`
)

// isolate clears every environment setting iconctl reads and points config
// discovery at an empty home.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ICONCTL_CFG", "ICONCTL_BASE", "ICONCTL_LISTEN", "ICONCTL_S3_ENDPOINT",
		"XDG_CONFIG_HOME", "APPDATA", "AWS_REGION", "AWS_PROFILE", "NO_COLOR",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("HOME", t.TempDir())
}

// iconDir writes gear and arrow icons and returns the base for them.
func iconDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gear.svg"), []byte(gearSVG), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arrow.svg"), []byte(arrowSVG), 0o644))
	return dir + string(filepath.Separator)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	ctx := context.Background()
	args = append([]string{"iconctl"}, args...)

	app, err := InitApp(ctx, args)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err = app.Run(ctx, args)
	return stdout.String(), stderr.String(), err
}

func TestGet(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	stdout, _, err := run(t, "get", "--base", base, "gear", "arrow", "gear")

	require.NoError(t, err)
	assert.Equal(t, gearSVG+"\n"+arrowSVG+"\n"+gearSVG+"\n", stdout)
}

func TestGet_PartialFailure(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	stdout, stderr, err := run(t, "get", "--base", base, "gear", "missing")

	var fe *FailedError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FailedError{Failed: 1, Total: 2}, *fe)
	assert.Equal(t, gearSVG+"\n", stdout)
	assert.Contains(t, stderr, "warning:")
	assert.Contains(t, stderr, `"missing"`)
}

func TestGet_Errors(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no names", args: []string{"get", "--base", base}, wantErr: "no icon names"},
		{name: "no base", args: []string{"get", "gear"}, wantErr: "no base location"},
		{name: "negative retries", args: []string{"get", "--base", base, "--retries=-1", "gear"}, wantErr: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGet_BaseFromEnvAndConfig(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	t.Run("env", func(t *testing.T) {
		t.Setenv("ICONCTL_BASE", base)
		stdout, _, err := run(t, "get", "gear")
		require.NoError(t, err)
		assert.Equal(t, gearSVG+"\n", stdout)
	})

	t.Run("config namespace", func(t *testing.T) {
		cfgFile := filepath.Join(t.TempDir(), "iconctl.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte("base: /nowhere/\nget:\n  base: "+base+"\n"), 0o644))
		t.Setenv("ICONCTL_CFG", cfgFile)

		stdout, _, err := run(t, "get", "arrow")
		require.NoError(t, err)
		assert.Equal(t, arrowSVG+"\n", stdout)
	})
}

func TestInitApp_BrokenConfig(t *testing.T) {
	isolate(t)
	cfgFile := filepath.Join(t.TempDir(), "iconctl.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("base: [unclosed\n"), 0o644))
	t.Setenv("ICONCTL_CFG", cfgFile)

	_, err := InitApp(context.Background(), []string{"iconctl", "get"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestApply_Dir(t *testing.T) {
	isolate(t)
	base := iconDir(t)
	out := t.TempDir()

	_, _, err := run(t, "apply", "--base", base, "--dir", out, "gear", "missing")

	var fe *FailedError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Failed)

	b, err := os.ReadFile(filepath.Join(out, "gear.svg"))
	require.NoError(t, err)
	assert.Equal(t, gearSVG, string(b))
	assert.NoFileExists(t, filepath.Join(out, "missing.svg"))
}

func TestApply_Target(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	tests := []struct {
		name    string
		icon    string
		want    string
		wantErr bool
	}{
		{name: "replaces on success", icon: "gear", want: gearSVG},
		{name: "untouched on failure", icon: "missing", want: "old", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "icon.svg")
			require.NoError(t, os.WriteFile(file, []byte("old"), 0o644))

			_, _, err := run(t, "apply", "--base", base, "--target", file, tt.icon)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			b, err := os.ReadFile(file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestApply_WriteFailure(t *testing.T) {
	isolate(t)
	base := iconDir(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, stderr, err := run(t, "apply", "--base", base, "--dir", filepath.Join(blocker, "out"), "gear", "arrow")

	var fe *FailedError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Failed)
	assert.Equal(t, 2, fe.Total)
	assert.Contains(t, stderr, `warning: write icon "gear"`)
	assert.Contains(t, stderr, `warning: write icon "arrow"`)
	assert.NoFileExists(t, filepath.Join(blocker, "out", "gear.svg"))
}

func TestApply_TargetNeedsOneName(t *testing.T) {
	isolate(t)
	base := iconDir(t)
	file := filepath.Join(t.TempDir(), "icon.svg")

	_, _, err := run(t, "apply", "--base", base, "--target", file, "gear", "arrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")
	assert.NoFileExists(t, file)
}

func TestLs_JSON(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	stdout, _, err := run(t, "ls", "--base", base, "-o", "json", "gear", "missing", "arrow", "gear")
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, "arrow", rows[0]["name"])
	assert.Equal(t, "gear", rows[1]["name"])
	assert.Equal(t, "cached", rows[1]["status"])
	assert.Equal(t, 1.0, rows[1]["fetches"])
	assert.Equal(t, base+"gear.svg", rows[1]["location"])
	assert.Equal(t, "16 B", rows[1]["size"])
	assert.NotContains(t, rows[1], "bytes")

	assert.Equal(t, "missing", rows[2]["name"])
	assert.Equal(t, "failed", rows[2]["status"])
}

func TestLs_FilterSortAttrs(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	stdout, _, err := run(t, "ls", "--base", base, "-o", "json",
		"--attrs", "name::u,bytes", "--filter", "status=cached", "--sort", "-name",
		"gear", "arrow", "missing")
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"name":"GEAR","size":"16 B","bytes":16,"fetches":1,"status":"cached","location":"`+base+`gear.svg"},
		{"name":"ARROW","size":"17 B","bytes":17,"fetches":1,"status":"cached","location":"`+base+`arrow.svg"}
	]`, stdout)
}

func TestLs_Text(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	stdout, _, err := run(t, "ls", "--base", base, "--titles", "gear")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "name")
	assert.Contains(t, lines[0], "status")
	assert.Contains(t, lines[1], "gear")
	assert.Contains(t, lines[1], "cached")
}

func TestLs_Schema(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "ls", "--schema")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Schema for Row --\nbytes\nerror\nfetches\nlocation\nname\nsize\nstatus\n"))
}

func TestLs_BadOutput(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	_, _, err := run(t, "ls", "--base", base, "-o", "xml", "gear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestBuildRows(t *testing.T) {
	c := icon.New("mem://", icon.FetcherFunc(func(_ context.Context, location string) (string, error) {
		if location == "mem://gear.svg" {
			return gearSVG, nil
		}
		return "", icon.ErrNotFound
	}))

	rows := BuildRows(context.Background(), c, []string{"nope", "gear", "nope", "gear"})

	assert.Equal(t, []Row{
		{Name: "gear", Size: "16 B", Bytes: 16, Fetches: 1, Location: "mem://gear.svg", Status: "cached"},
		{
			Name: "nope", Fetches: 1, Location: "mem://nope.svg", Status: "failed",
			Error: `fetch icon "nope" from mem://nope.svg: icon not found`,
		},
	}, rows)
	// The repeated failure was retried.
	assert.Equal(t, 2, c.Fetches("nope"))
}

func TestNewServer(t *testing.T) {
	isolate(t)
	base := iconDir(t)

	var srv *server.Server
	sc := ServeCommandBuilder(nil, meta.Meta{Args: []string{"iconctl", "serve"}})
	sc.Action = func(ctx context.Context, c *cli.Command) error {
		var err error
		srv, err = NewServer(ctx, c)
		return err
	}
	require.NoError(t, sc.Run(context.Background(),
		[]string{"serve", "--base", base, "--max-age", "60", "--listen", "127.0.0.1:0", "gear"}))
	require.NotNil(t, srv)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	h := srv.Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/icons/gear.svg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gearSVG, rec.Body.String())
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	// Warm up was the only miss; the request above was a hit.
	assert.Contains(t, rec.Body.String(), "iconctl_icon_misses_total 1")
	assert.Contains(t, rec.Body.String(), "iconctl_icon_hits_total 1")
}

func TestCompletion(t *testing.T) {
	isolate(t)

	tests := []struct {
		shell   string
		want    string
		wantErr bool
	}{
		{shell: "bash", want: "complete -F _iconctl iconctl"},
		{shell: "zsh", want: "#compdef iconctl"},
		{shell: "fish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			stdout, _, err := run(t, "completion", tt.shell)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.want)
		})
	}
}

func TestInitApp_Commands(t *testing.T) {
	isolate(t)

	app, err := InitApp(context.Background(), []string{"iconctl", "ls"})
	require.NoError(t, err)

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], "flags of %s not sorted", c.Name)
		}
	}
	assert.Equal(t, []string{"apply", "get", "ls", "serve", "completion"}, names)
}
