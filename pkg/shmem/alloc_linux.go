// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

//go:build linux
// +build linux

package shmem

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Region is an allocated shared-memory region and the descriptor needed
// to hand it to a child process.
type Region struct {
	f   *os.File
	mem []byte
}

// Alloc creates a RegionSize memfd and maps it into the parent's address
// space; the name is irrelevant, so every region uses the same one.
func Alloc() (*Region, error) {
	fd, err := unix.MemfdCreate("railcar-shmem", 0)
	if err != nil {
		return nil, fmt.Errorf("shmem: memfd_create: %w", err)
	}
	f := os.NewFile(uintptr(fd), fmt.Sprintf("/proc/self/fd/%d", fd))
	if err := f.Truncate(int64(RegionSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("shmem: truncate: %w", err)
	}
	mem, err := syscall.Mmap(fd, 0, RegionSize, syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmem: mmap: %w", err)
	}
	return &Region{f: f, mem: mem}, nil
}

// View returns a typed accessor over the region's backing memory.
func (r *Region) View() *View { return NewView(r.mem) }

// File returns the memfd so it can be passed to a child process's
// ExtraFiles, the serialized descriptor referenced by the Init wire
// message (spec §4.6, §4.7).
func (r *Region) File() *os.File { return r.f }

// Close unmaps the region. The memfd itself needs no explicit
// shm_unlink-style deletion: per spec §4.6, on Linux the region is
// released once both the parent's and any child's references to the fd
// are dropped, which happens here and on the child's own exit.
func (r *Region) Close() error {
	err1 := syscall.Munmap(r.mem)
	err2 := r.f.Close()
	switch {
	case err1 != nil:
		return err1
	case err2 != nil:
		return err2
	default:
		return nil
	}
}
