// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package wrappers generates the launcher scripts that expose every command on PATH.
//
// Each command gets a lower-case, hyphenated wrapper and, on case-sensitive
// filesystems, a case-preserving alias. Multi-word commands also get a
// namespace launcher named after their first word. Every generated file
// carries settings.Marker; files without it are never touched, and files with
// it are pruned once they fall out of the wrapper set.
//
// On POSIX a wrapper is a single sh script:
//
//	#!/usr/bin/env sh
//	# commands-wrapper: generated wrapper, safe to delete
//	COMMANDS_WRAPPER_WRAPPER_ENTRY=1
//	COMMANDS_WRAPPER_WRAPPER_NAME=oc
//	export COMMANDS_WRAPPER_WRAPPER_ENTRY COMMANDS_WRAPPER_WRAPPER_NAME
//	exec /home/user/.local/bin/commands-wrapper oc "$@"
//
// On Windows every wrapper is a .cmd and .ps1 pair.
package wrappers
