// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package app implements the invocations of the tool on top of the command
// store, the wrapper synchronizer and the step executor.
//
// Every invocation except the shell integration query reconciles the wrapper
// directory before doing its work. Running a command keeps that reconcile
// quiet apart from the conflicts of the command itself.
package app
