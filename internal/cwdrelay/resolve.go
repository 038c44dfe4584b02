// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cwdrelay

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveDir turns the argument of a cd into an absolute directory. An empty
// argument is home, a leading ~ expands to home, environment references are
// expanded with getenv and relative paths are joined to wd.
func ResolveDir(raw, home, wd string, getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}

	dir := os.Expand(strings.TrimSpace(raw), getenv)

	switch {
	case dir == "", dir == "~":
		dir = home
	case strings.HasPrefix(dir, "~/"), strings.HasPrefix(dir, `~\`):
		dir = filepath.Join(home, dir[2:])
	}

	if !filepath.IsAbs(dir) {
		dir = filepath.Join(wd, dir)
	}

	return filepath.Clean(dir)
}
