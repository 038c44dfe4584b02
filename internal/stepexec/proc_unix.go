// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package stepexec

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the process in a group of its own so it can be signalled as a whole.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalGroup(p *os.Process, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return p.Signal(sig)
	}

	err := syscall.Kill(-p.Pid, s)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}

	return err
}

func killGroup(p *os.Process) error {
	return signalGroup(p, syscall.SIGKILL)
}

// terminalSignal reports whether the terminal delivers sig to the whole foreground group.
func terminalSignal(sig os.Signal) bool {
	return sig == os.Interrupt || sig == syscall.SIGQUIT
}

// exitStatus maps a signal death to 128 plus the signal number, as shells do.
func exitStatus(ps *os.ProcessState) (int, bool) {
	if ps == nil {
		return 0, false
	}

	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), true
	}

	code := ps.ExitCode()
	if code < 0 {
		return 0, false
	}

	return code, true
}
