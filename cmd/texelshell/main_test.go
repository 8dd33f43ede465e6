// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelshell/main_test.go
// Summary: Exercises path resolution and the inspection subcommands.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelshell/auth"
	"github.com/framegrace/texelshell/config"
)

func TestResolvePathsOverrides(t *testing.T) {
	root := t.TempDir()
	v := viper.New()
	v.Set("root", filepath.Join(root, "state"))
	v.Set("programs", filepath.Join(root, "apps"))

	paths, err := resolvePaths(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "state"), paths.Root)
	assert.Equal(t, filepath.Join(root, "apps"), paths.Programs)
	assert.Equal(t, filepath.Join(root, "state", "preferences.json"), paths.Preferences)
	assert.Equal(t, filepath.Join(root, "state", "history.db"), paths.History)

	info, err := os.Stat(paths.Root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestProgramsCommandOnEmptyCatalog(t *testing.T) {
	root := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"programs", "--root", root})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "no programs in")
}

func TestHistoryCommandOnFreshDatabase(t *testing.T) {
	root := t.TempDir()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"history", "--root", root, "--limit", "5"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, out.String())
}

func TestPasswdStoresHashedLogin(t *testing.T) {
	root := t.TempDir()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetArgs([]string{"passwd", "alice", "--root", root})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "password for alice updated")

	doc, err := config.NewStore(filepath.Join(root, "preferences.json"), nil).Load()
	require.NoError(t, err)
	users := doc.GetStringMap(config.SectionAuth, config.KeyUsers)
	assert.True(t, strings.HasPrefix(users["alice"], "$2"))
	assert.Equal(t, "admin", users["admin"], "existing logins are kept")

	a := auth.FromConfig(doc)
	assert.Equal(t, auth.Pass, a.Verify("alice", "s3cret"))
	assert.NotEqual(t, auth.Pass, a.Verify("alice", "wrong"))
}

func TestPasswdRejectsEmptyPassword(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs([]string{"passwd", "alice", "--root", t.TempDir()})

	assert.EqualError(t, cmd.Execute(), "empty password")
}
