// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package outputbuf provides the sink that child process output is copied into
// while it is shown to the user. The step executor matches expect patterns
// against it and reports its last line when a step fails.
package outputbuf
