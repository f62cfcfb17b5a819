package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "storage:\n  driver: sqlite\n  dsn: " + filepath.Join(dir, "lb.db") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSettingsCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok (sqlite)")

	_, err = run(t, "--config", cfg, "settings", "set", "client_secret", "s3cr3t")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "settings", "set", "client_id", "bridge")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "settings", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "client_id=bridge\n")
	assert.Contains(t, out, "client_secret=********\n")
	assert.NotContains(t, out, "s3cr3t")

	out, err = run(t, "--config", cfg, "settings", "get", "client_secret", "--reveal")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t\n", out)

	_, err = run(t, "--config", cfg, "settings", "unset", "client_id")
	require.NoError(t, err)
	out, err = run(t, "--config", cfg, "settings", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "client_id=")
}

func TestSettingsSet_UnknownKey(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "migrate")
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "settings", "set", "colour", "blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username_attribute")
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "********", display("client_secret", "x", false))
	assert.Equal(t, "x", display("client_secret", "x", true))
	assert.Equal(t, "", display("client_secret", "", false))
	assert.Equal(t, "bridge", display("client_id", "bridge", false))
}
