package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/4thel00z/journalsync/internal"
)

// Executables named jsync-<name> on PATH become "jsync <name>", unless a
// builtin command of that name exists.
const externalPrefix = "jsync-"

var builtinCommands = map[string]bool{
	"sync": true, "watch": true, "init": true, "status": true,
	"diff": true, "list": true, "ls": true, "log": true,
	"help": true, "completion": true, "version": true,
}

func findExternal(name string) (string, error) {
	if builtinCommands[name] {
		return "", fmt.Errorf("%q is a builtin command", name)
	}

	binary := externalPrefix + name
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("unknown command %q: %s not found in PATH", name, binary)
	}
	return path, nil
}

func listExternalCommands() []string {
	seen := make(map[string]bool)
	var commands []string

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := externalName(dir, entry)
			if name == "" || seen[name] || builtinCommands[name] {
				continue
			}
			seen[name] = true
			commands = append(commands, name)
		}
	}

	sort.Strings(commands)
	return commands
}

func externalName(dir string, entry os.DirEntry) string {
	if entry.IsDir() || !strings.HasPrefix(entry.Name(), externalPrefix) {
		return ""
	}

	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil || info.Mode()&0111 == 0 {
		return ""
	}

	return strings.TrimPrefix(entry.Name(), externalPrefix)
}

func executeExternal(ctx context.Context, name string, args []string, version string) error {
	binaryPath, err := findExternal(name)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Env = externalEnv(version)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// externalEnv hands plugins the resolved repository and journal directories
// so they do not have to re-read the configuration.
func externalEnv(version string) []string {
	bin, _ := os.Executable()
	env := append(os.Environ(),
		"JSYNC_VERSION="+version,
		"JSYNC_BIN="+bin,
	)

	cwd, err := os.Getwd()
	if err != nil {
		return env
	}
	root, err := internal.FindRepoRoot(cwd)
	if err != nil {
		return env
	}
	env = append(env, "JSYNC_REPO="+root)

	cfg, err := internal.LoadConfig(root, "")
	if err != nil {
		return env
	}
	ws, err := internal.NewWorkspace(root, cfg.Source, cfg.Dest)
	if err != nil {
		return env
	}
	return append(env,
		"JSYNC_SOURCE_DIR="+ws.SourcePath(),
		"JSYNC_DEST_DIR="+ws.DestPath(),
	)
}
