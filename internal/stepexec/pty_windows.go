// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package stepexec

func probePTY() bool {
	return false
}

func newPTYBackend(stdio Stdio) Backend {
	return newPipeBackend(stdio)
}
