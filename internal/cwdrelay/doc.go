// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cwdrelay hands a working directory from one invocation to the next.
//
// A wrapper launched for a command that only changes directory cannot move the
// shell that started it. It records the destination keyed by the parent
// process id instead, and the next wrapper started from the same shell
// consumes the entry and runs in that directory.
package cwdrelay
