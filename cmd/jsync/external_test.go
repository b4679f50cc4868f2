package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho ok\n"), mode))
	return path
}

func TestFindExternal(t *testing.T) {
	tmp := t.TempDir()
	script := writeScript(t, tmp, "jsync-publish-rss", 0755)
	t.Setenv("PATH", tmp+string(os.PathListSeparator)+os.Getenv("PATH"))

	path, err := findExternal("publish-rss")
	require.NoError(t, err)
	assert.Equal(t, script, path)
}

func TestFindExternalNotFound(t *testing.T) {
	_, err := findExternal("nonexistent-command-12345")
	assert.Error(t, err)
}

func TestFindExternalBuiltinWins(t *testing.T) {
	tmp := t.TempDir()
	writeScript(t, tmp, "jsync-sync", 0755)
	t.Setenv("PATH", tmp)

	_, err := findExternal("sync")
	assert.Error(t, err)
}

func TestListExternalCommands(t *testing.T) {
	tmp := t.TempDir()
	writeScript(t, tmp, "jsync-foo", 0755)
	writeScript(t, tmp, "jsync-bar", 0755)
	writeScript(t, tmp, "jsync-noexec", 0644)
	writeScript(t, tmp, "jsync-watch", 0755)
	writeScript(t, tmp, "other-script", 0755)
	t.Setenv("PATH", tmp)

	assert.Equal(t, []string{"bar", "foo"}, listExternalCommands())
}
