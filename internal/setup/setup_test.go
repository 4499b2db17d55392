package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)
}

func TestRegister_PreservesOtherEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{
  "theme": "dark",
  "mcpServers": {"other": {"command": "/bin/other"}}
}`), 0644))

	binary := filepath.Join(dir, BinaryName)
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0755))

	written, err := Register(Options{ConfigPath: path, BinaryPath: binary, DataDir: filepath.Join(dir, "data")})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	var raw map[string]json.RawMessage
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"dark"`, string(raw["theme"]))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/bin/other", cfg.MCPServers["other"].Command)
	assert.Equal(t, binary, cfg.MCPServers[ServerKey].Command)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.MCPServers[ServerKey].Env["DISPUTEKIT_DATA_DIR"])
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	status, err := Inspect(path)
	require.NoError(t, err)
	assert.False(t, status.Registered)

	_, err = Register(Options{ConfigPath: path, BinaryPath: filepath.Join(dir, "missing-binary")})
	require.NoError(t, err)

	status, err = Inspect(path)
	require.NoError(t, err)
	assert.True(t, status.Registered)
	require.Len(t, status.Issues, 1)
	assert.Contains(t, status.Issues[0], "server binary not found")
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
