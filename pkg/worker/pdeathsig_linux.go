// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

//go:build linux
// +build linux

package worker

import (
	"os/exec"
	"syscall"
)

// setPdeathsig arranges for the child to receive SIGKILL if this process
// dies for any reason (spec §4.7).
func setPdeathsig(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}
}
