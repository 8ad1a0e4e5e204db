// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "snapgrid.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Bridge.MaxPayloadBytes != 64<<20 {
		t.Errorf("expected max_payload_bytes=64MiB, got %d", cfg.Bridge.MaxPayloadBytes)
	}
	if len(cfg.Bridge.Grants) != 1 || cfg.Bridge.Grants[0] != "**" {
		t.Errorf("expected grants=[**], got %v", cfg.Bridge.Grants)
	}
	if cfg.Storage.Dir != "" {
		t.Errorf("expected empty storage.dir (platform default), got %q", cfg.Storage.Dir)
	}
}

func TestResolveDefaultsExpandSocketPath(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	cfg, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.Bridge.SocketPath != "/run/user/1000/snapgrid-bridge.sock" {
		t.Errorf("socket_path = %q", cfg.Bridge.SocketPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}

	t.Setenv("XDG_RUNTIME_DIR", "")
	cfg, err = Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bridge.SocketPath != "/tmp/snapgrid-bridge.sock" {
		t.Errorf("socket_path without XDG_RUNTIME_DIR = %q", cfg.Bridge.SocketPath)
	}
}

func TestLoadRequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SNAPGRID_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "SNAPGRID_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolvePrefersFlagOverEnvironment(t *testing.T) {
	fromEnv := writeConfig(t, "storage:\n  dir: /env/board\n")
	fromFlag := writeConfig(t, "storage:\n  dir: /flag/board\n")
	t.Setenv(EnvironmentVariable, fromEnv)

	cfg, err := Resolve(fromFlag)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Dir != "/flag/board" {
		t.Errorf("storage.dir = %q, want /flag/board", cfg.Storage.Dir)
	}

	cfg, err = Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Dir != "/env/board" {
		t.Errorf("storage.dir = %q, want /env/board", cfg.Storage.Dir)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: development

storage:
  dir: /custom/board

bridge:
  socket_path: /custom/bridge.sock
  max_payload_bytes: 1048576
  grants:
    - board/load
    - file/check
  relay_listen: 127.0.0.1:8642

log:
  level: debug
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Storage.Dir != "/custom/board" {
		t.Errorf("expected dir=/custom/board, got %s", cfg.Storage.Dir)
	}
	if cfg.Bridge.SocketPath != "/custom/bridge.sock" {
		t.Errorf("expected socket_path=/custom/bridge.sock, got %s", cfg.Bridge.SocketPath)
	}
	if cfg.Bridge.MaxPayloadBytes != 1<<20 {
		t.Errorf("expected max_payload_bytes=1MiB, got %d", cfg.Bridge.MaxPayloadBytes)
	}
	if strings.Join(cfg.Bridge.Grants, ",") != "board/load,file/check" {
		t.Errorf("expected grants to replace the default, got %v", cfg.Bridge.Grants)
	}
	if cfg.Bridge.RelayListen != "127.0.0.1:8642" {
		t.Errorf("expected relay_listen=127.0.0.1:8642, got %s", cfg.Bridge.RelayListen)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected level=debug, got %s", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile of a missing file succeeded")
	}
	if _, err := LoadFile(writeConfig(t, "bridge: [not, a, map]\n")); err == nil {
		t.Error("LoadFile of malformed YAML succeeded")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: production

storage:
  dir: /default/board

bridge:
  grants: ["**"]

production:
  storage:
    dir: /prod/board
  bridge:
    grants: ["board/load"]
  log:
    level: error
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Storage.Dir != "/prod/board" {
		t.Errorf("expected dir=/prod/board, got %s", cfg.Storage.Dir)
	}
	if len(cfg.Bridge.Grants) != 1 || cfg.Bridge.Grants[0] != "board/load" {
		t.Errorf("expected production grants, got %v", cfg.Bridge.Grants)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected level=error, got %s", cfg.Log.Level)
	}
}

func TestProductionDefaultsRaiseLogLevel(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "environment: production\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected level=warn in production, got %s", cfg.Log.Level)
	}
}

func TestVariableExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := LoadFile(writeConfig(t, `
storage:
  dir: ${HOME}/Pictures/SnapGrid
bridge:
  socket_path: ${SNAPGRID_ROOT}/bridge.sock
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Dir != "/home/tester/Pictures/SnapGrid" {
		t.Errorf("dir = %q", cfg.Storage.Dir)
	}
	if cfg.Bridge.SocketPath != "/home/tester/Pictures/SnapGrid/bridge.sock" {
		t.Errorf("socket_path = %q", cfg.Bridge.SocketPath)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("SNAPGRID_STORAGE_DIR", "/env/board")
	t.Setenv("SNAPGRID_ENVIRONMENT", "production")

	cfg, err := LoadFile(writeConfig(t, "environment: development\nstorage:\n  dir: /file/board\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Environment != Development || cfg.Storage.Dir != "/file/board" {
		t.Errorf("environment variables leaked into config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Environment: "staging",
		Storage:     StorageConfig{Dir: "relative/board"},
		Bridge: BridgeConfig{
			SocketPath:      "",
			MaxPayloadBytes: 0,
			Grants:          []string{"a/**/b/**"},
			RelayListen:     "0.0.0.0:8642",
		},
		Log: LogConfig{Level: "chatty"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{
		"invalid environment",
		"storage.dir must be absolute",
		"bridge.socket_path is required",
		"bridge.max_payload_bytes",
		"bridge.grants",
		"bridge.relay_listen",
		"log.level",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q:\n%v", want, err)
		}
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("SNAPGRID_TEST_VAR", "from-env")
	vars := map[string]string{"HOME": "/home/test"}

	tests := []struct {
		input string
		want  string
	}{
		{"${HOME}/board", "/home/test/board"},
		{"${SNAPGRID_TEST_VAR}/x", "from-env/x"},
		{"${SNAPGRID_UNSET_VAR:-/fallback}/x", "/fallback/x"},
		{"${SNAPGRID_UNSET_VAR}/x", "/x"},
		{"/plain/path", "/plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, vars); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}
