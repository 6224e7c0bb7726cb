// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestConfig points ICONCTL_CFG at a testdata file and resets the
// global Config.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	require.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("ICONCTL_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

// unsetenv removes keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		wantErr   bool
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "https://cdn.example.com/icons/", cfg.Data["base"])
				assert.Equal(t, "us-east-1", cfg.Data["region"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				serve, ok := cfg.Data["serve"].(map[string]interface{})
				require.True(t, ok, "serve should be a map")
				assert.Equal(t, ":9090", serve["listen"])
			},
		},
		{
			name:     "mixed types",
			testFile: "mixed-types.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.Equal(t, 1, cfg.Data["version"])
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source, "should have a source path")
				assert.Empty(t, cfg.Data)
			},
		},
		{
			name:     "invalid yaml",
			testFile: "invalid.yaml",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("ICONCTL_CFG", "/nonexistent/path/iconctl.yaml")
	Config = Type{}

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_ConfigIsDirectory(t *testing.T) {
	t.Setenv("ICONCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestLoad_NoStandardConfig(t *testing.T) {
	unsetenv(t, "ICONCTL_CFG", "XDG_CONFIG_HOME", "APPDATA")
	t.Setenv("HOME", t.TempDir())
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoad_StandardLocations(t *testing.T) {
	dir, err := filepath.Abs("testdata/home")
	require.NoError(t, err)
	unsetenv(t, "ICONCTL_CFG", "XDG_CONFIG_HOME", "APPDATA")
	t.Setenv("HOME", dir)
	Config = Type{}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.Source)
	assert.Equal(t, "file:///usr/share/icons/", cfg.Data["base"])
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		namespace    string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "simple", testFile: "simple.yaml", key: "base", want: "https://cdn.example.com/icons/"},
		{name: "dotted", testFile: "nested.yaml", key: "serve.listen", want: ":9090"},
		{name: "namespaced wins", testFile: "nested.yaml", namespace: "get", key: "base", want: "https://cdn.example.com/icons/"},
		{name: "namespace falls back", testFile: "nested.yaml", namespace: "serve", key: "base", want: "./icons/"},
		{name: "missing with default", testFile: "simple.yaml", key: "missing", defaultValue: []string{"dflt"}, want: "dflt"},
		{name: "missing without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-string", testFile: "mixed-types.yaml", key: "version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)
			_, err := Load(tt.namespace)
			require.NoError(t, err)

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{name: "int", testFile: "mixed-types.yaml", key: "version", want: 1},
		{name: "float truncated", testFile: "mixed-types.yaml", key: "timeout", want: 30},
		{name: "nested", testFile: "nested.yaml", key: "s3.max_retries", want: 5},
		{name: "missing with default", testFile: "simple.yaml", key: "missing", defaultValue: []int{60}, want: 60},
		{name: "missing without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-int", testFile: "simple.yaml", key: "region", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)
			_, _ = Load()

			got, err := GetInt(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDuration(t *testing.T) {
	setupTestConfig(t, "nested.yaml")
	_, _ = Load()

	got, err := GetDuration("get.timeout")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)

	got, err = GetDuration("missing", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, got)
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "nested.yaml")
	_, _ = Load()

	got, err := GetStringSlice("get.defaults")
	require.NoError(t, err)
	assert.Equal(t, []string{"--retries 2"}, got)

	got, err = GetStringSlice("base")
	require.NoError(t, err)
	assert.Equal(t, []string{"./icons/"}, got)

	_, err = GetStringSlice("missing")
	assert.Error(t, err)

	setupTestConfig(t, "mixed-types.yaml")
	_, _ = Load()
	_, err = GetStringSlice("mixed")
	assert.Error(t, err)
}

func TestConfig_LazyLoad(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	val, err := GetString("region")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", val)
	assert.NotEmpty(t, Config.Source, "Config should be loaded")
}

func TestConfig_GetNestedPath(t *testing.T) {
	setupTestConfig(t, "deep-nested.yaml")
	_, err := Load()
	require.NoError(t, err)

	val, err := Config.get("level1.level2.level3.value")
	require.NoError(t, err)
	assert.Equal(t, "deep-value", val)
}

func TestParseEnv(t *testing.T) {
	unsetenv(t, "ICONCTL_LOG", "ICONCTL_FILTER_DELIM", "NO_COLOR")
	e, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, ",", e.FilterDelim)
	assert.Equal(t, "ERROR", e.LogLevel)
	assert.False(t, e.Colorless())

	t.Setenv("ICONCTL_LOG", "debug")
	t.Setenv("NO_COLOR", "yes")
	e, err = ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", e.LogLevel)
	assert.True(t, e.Colorless())
}
