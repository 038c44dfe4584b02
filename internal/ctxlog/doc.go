// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context.
//
// The default handler pretty prints records to stderr, with attributes
// rendered as coloured JSON when stderr is a terminal.
package ctxlog
