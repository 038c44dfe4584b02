// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package stepexec

import (
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

// signalGroup only supports killing; Windows has no interrupt for other processes.
func signalGroup(p *os.Process, sig os.Signal) error {
	if sig == os.Kill {
		return p.Kill()
	}

	return nil
}

func killGroup(p *os.Process) error {
	return p.Kill()
}

func terminalSignal(sig os.Signal) bool {
	return sig == os.Interrupt
}

func exitStatus(ps *os.ProcessState) (int, bool) {
	if ps == nil {
		return 0, false
	}

	code := ps.ExitCode()
	if code < 0 {
		return 0, false
	}

	return code, true
}
