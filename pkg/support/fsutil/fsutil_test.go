// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandHome("~/programs/softmax.yaml")
	require.NoError(t, err)
	assert.Equal(t, path.Join(home, "programs/softmax.yaml"), got)

	got, err = ExpandHome("relative/file.yaml")
	require.NoError(t, err)
	assert.Equal(t, "relative/file.yaml", got)

	_, err = ExpandHome("~no_such_user_for_fsutil_test/file.yaml")
	require.Error(t, err)
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	fileName := path.Join(dir, "program.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte("groups: []\n"), 0o644))

	got, err := ResolveInput(fileName)
	require.NoError(t, err)
	assert.Equal(t, fileName, got)

	_, err = ResolveInput(path.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found")
}
