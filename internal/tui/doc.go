// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides the interactive command picker shown when the tool is
// started on a terminal without arguments. It lists the defined commands with
// their descriptions and returns the one the user chose.
package tui
