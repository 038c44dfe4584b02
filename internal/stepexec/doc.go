// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package stepexec runs the steps of a command against a live child process.
//
// The first step is started through the shell of the invocation. Later steps
// type into the process (command, send, press_key) or wait for its output
// (expect). When the steps are done, control is handed to the user if the
// process runs on a pseudo terminal and stdin is a terminal; otherwise the
// executor waits for the process once.
//
// Two backends exist: a pseudo terminal backend built on creack/pty, and a
// pipe backend built on os/exec. NewFactory picks one when it is built.
package stepexec
