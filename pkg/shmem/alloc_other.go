// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

//go:build !linux
// +build !linux

package shmem

import "os"

// Region is a heap-backed stand-in shared-memory region for non-Linux
// platforms. There is no memfd_create equivalent in the dependency
// surface this module draws on here, so per the documented Open Question
// resolution (spec §9), the region's lifecycle is governed by explicit
// teardown (Close) rather than Linux's shmctl(IPC_RMID)-on-last-detach:
// the caller must Close the region itself once both ends are done with
// it, instead of relying on process-exit cleanup semantics.
type Region struct {
	mem []byte
}

// Alloc allocates a RegionSize buffer on the Go heap. It cannot be shared
// with a genuinely separate OS process the way the Linux memfd path can;
// a non-Linux worker is expected to run in-process (spec's "executor" may
// call the harness closure directly rather than through a child pipe) and
// observe the same slice.
func Alloc() (*Region, error) {
	return &Region{mem: make([]byte, RegionSize)}, nil
}

// View returns a typed accessor over the region's backing memory.
func (r *Region) View() *View { return NewView(r.mem) }

// File is unavailable on this platform: there is no fd-backed descriptor
// to hand to a child, so it returns nil.
func (r *Region) File() *os.File { return nil }

// Close releases the region. On this platform it is a no-op beyond
// dropping the Go reference; kept for API symmetry with the Linux path.
func (r *Region) Close() error {
	r.mem = nil
	return nil
}
