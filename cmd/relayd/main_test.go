package main

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ListenFailureReturnsError(t *testing.T) {
	// Hold the port so ListenAndServe fails.
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("server:\n  port: %d\ndatabase:\n  driver: sqlite\n  dsn: %s\nrelay:\n  enabled: false\n",
		port, filepath.Join(dir, "devices.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(body), 0o600))
	t.Setenv("CONFIG_PATH", configPath)

	err = run(log.New(io.Discard, "", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListenAndServe")
}

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database:\n  driver: oracle\n  dsn: x\n"), 0o600))
	t.Setenv("CONFIG_PATH", configPath)

	err := run(log.New(io.Discard, "", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
