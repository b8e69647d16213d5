package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestTraceWritesOnlyWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "termcord.log")
	Configure(path)
	t.Cleanup(func() {
		SetTraceEnabled(false)
		Close()
	})

	Trace("bridge.command", map[string]interface{}{"name": "dropped"})
	SetTraceEnabled(true)
	Trace("bridge.command", map[string]interface{}{"name": "list_servers"})
	Close()

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "bridge.command", entries[0]["event"])
	payload, ok := entries[0]["payload"].(map[string]interface{})
	require.True(t, ok, "payload should decode as an object")
	assert.Equal(t, "list_servers", payload["name"])
}

func TestErrorIsAlwaysWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termcord.log")
	Configure(path)
	t.Cleanup(Close)

	Error(nil)
	Error(errors.New("stream closed"))
	Close()

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "stream closed", entries[0]["error"])
}

func TestUnconfiguredLoggerDiscards(t *testing.T) {
	Close()
	SetTraceEnabled(true)
	t.Cleanup(func() { SetTraceEnabled(false) })

	assert.NotPanics(t, func() {
		Trace("noop", nil)
		Error(errors.New("ignored"))
		Warn("ignored")
	})
}
