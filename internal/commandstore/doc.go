// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandstore loads command definitions from YAML files and applies
// edits to them with read-merge-write and atomic replacement.
//
// Every successful edit is followed by a best-effort Reconciler pass whose
// diagnostics are returned to the caller. The edit itself is never undone.
package commandstore
