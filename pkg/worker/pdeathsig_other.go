// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

//go:build !linux
// +build !linux

package worker

import "os/exec"

// setPdeathsig is a no-op on platforms without PDEATHSIG; there is no
// portable equivalent, so an orphaned child here simply outlives its
// parent until it exits on its own or is reaped by the OS.
func setPdeathsig(cmd *exec.Cmd) {}
