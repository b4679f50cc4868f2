package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0", nil)

	require.NotNil(t, cmd)
	assert.Equal(t, "jsync", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)
}

func TestRootCmdHasFlags(t *testing.T) {
	cmd := NewRootCmd("1.0.0", nil)

	for _, name := range []string{"config", "repo", "source", "dest", "backend", "log-level", "json"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing persistent flag %q", name)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := NewRootCmd("dev", newApp())

	for _, name := range []string{"init", "sync", "watch", "status", "diff", "list", "log"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestSyncCmdFlags(t *testing.T) {
	cmd := NewSyncCmd(newApp())

	watch := cmd.Flags().ShorthandLookup("w")
	require.NotNil(t, watch)
	assert.Equal(t, "watch", watch.Name)
	assert.Equal(t, "30m0s", cmd.Flags().Lookup("interval").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("no-push"))
}

func TestWatchCmdFlags(t *testing.T) {
	cmd := NewWatchCmd(newApp())

	assert.Equal(t, "30m0s", cmd.Flags().Lookup("debounce").DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("sync-on-start"))
}
