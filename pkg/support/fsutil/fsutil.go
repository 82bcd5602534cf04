// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil resolves the paths of the files given to the tools.
package fsutil

import (
	"os"
	"os/user"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// FileExists returns whether the file exists, or an error if the file system failed to tell.
func FileExists(fileName string) (bool, error) {
	_, err := os.Stat(fileName)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to stat %q", fileName)
}

// ExpandHome replaces a leading "~" or "~user" in fileName by the corresponding home directory.
// Other paths are returned unchanged.
func ExpandHome(fileName string) (string, error) {
	if !strings.HasPrefix(fileName, "~") {
		return fileName, nil
	}
	userName, rest, _ := strings.Cut(fileName[1:], "/")
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to find the home directory for %q", fileName)
	}
	return path.Join(usr.HomeDir, rest), nil
}

// ResolveInput expands the home directory in fileName and checks the file exists.
func ResolveInput(fileName string) (string, error) {
	resolved, err := ExpandHome(fileName)
	if err != nil {
		return "", err
	}
	exists, err := FileExists(resolved)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.Errorf("file %q not found", fileName)
	}
	return resolved, nil
}
