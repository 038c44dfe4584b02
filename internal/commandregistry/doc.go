// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandregistry holds the loaded command records and resolves
// typed names to them, case-insensitively and across multi-word names.
package commandregistry
