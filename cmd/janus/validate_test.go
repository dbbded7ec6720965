package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateCommandValidConfig(t *testing.T) {
	cfgFile = writeConfig(t, `
server:
  listen_address: "127.0.0.1:9090"
store:
  path: "/tmp/janus-test.db"
`)

	if err := validateCmd.RunE(validateCmd, nil); err != nil {
		t.Errorf("validate with valid config returned error: %v", err)
	}
}

func TestValidateCommandInvalidConfig(t *testing.T) {
	cfgFile = writeConfig(t, `
admission:
  lag_threshold: -5ms
`)

	if err := validateCmd.RunE(validateCmd, nil); err == nil {
		t.Error("validate with negative lag threshold should return error")
	}
}

func TestValidateCommandMissingFile(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "nonexistent.yaml")

	if err := validateCmd.RunE(validateCmd, nil); err == nil {
		t.Error("validate with missing config file should return error")
	}
}
