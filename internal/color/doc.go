// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes.
// Output is plain when NO_COLOR is set, or when the process is not attached
// to a terminal and FORCE_COLOR is unset.
package color
