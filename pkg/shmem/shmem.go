// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package shmem implements the ShMemView C-ABI layout the parent and
// worker child processes share (spec §4.6, C6): total_edges, is_valid,
// num_calls_executed, and a saturating coverage map, all at fixed
// offsets in a single region. Allocation is platform-specific (see
// alloc_linux.go / alloc_other.go); the view itself is a thin byte-offset
// accessor, kept separate from the raw mmap plumbing that backs it.
package shmem

import "encoding/binary"

// CoverageMapSize is the fixed size of the coverage map, a power of two
// per spec §4.6.
const CoverageMapSize = 32 * 1024

const (
	offTotalEdges       = 0
	offIsValid          = offTotalEdges + 4
	offNumCallsExecuted = offIsValid + 4 // u8 is_valid plus 3 alignment padding bytes
	offCoverage         = offNumCallsExecuted + 4
	// RegionSize is the fixed total size of the shared region.
	RegionSize = offCoverage + CoverageMapSize
)

// View is a typed accessor over a raw shared-memory region laid out per
// spec §4.6: `u32 total_edges | u8 is_valid | u32 num_calls_executed |
// u8[CoverageMapSize] coverage`, with the C compiler's default alignment:
// is_valid is followed by 3 padding bytes, so num_calls_executed sits at
// offset 8 and coverage at offset 12. Integers are little-endian. Both
// processes must agree on this exact byte layout.
type View struct {
	buf []byte
}

// NewView wraps an existing backing buffer, which must be at least
// RegionSize bytes (allocated by Alloc).
func NewView(buf []byte) *View {
	if len(buf) < RegionSize {
		panic("shmem: backing buffer smaller than RegionSize")
	}
	return &View{buf: buf}
}

func (v *View) TotalEdges() uint32 {
	return binary.LittleEndian.Uint32(v.buf[offTotalEdges:])
}

func (v *View) SetTotalEdges(n uint32) {
	binary.LittleEndian.PutUint32(v.buf[offTotalEdges:], n)
}

func (v *View) IsValid() bool {
	return v.buf[offIsValid] != 0
}

func (v *View) SetIsValid(valid bool) {
	if valid {
		v.buf[offIsValid] = 1
	} else {
		v.buf[offIsValid] = 0
	}
}

func (v *View) NumCallsExecuted() uint32 {
	return binary.LittleEndian.Uint32(v.buf[offNumCallsExecuted:])
}

func (v *View) SetNumCallsExecuted(n uint32) {
	binary.LittleEndian.PutUint32(v.buf[offNumCallsExecuted:], n)
}

// Coverage returns the raw coverage map, a direct view into the shared
// region (mutations are visible to the other process).
func (v *View) Coverage() []byte {
	return v.buf[offCoverage : offCoverage+CoverageMapSize]
}

// HitEdge applies the saturating update rule from spec §4.6 to cell idx:
// cell = (cell == 255) ? 1 : cell + 1.
func (v *View) HitEdge(idx int) {
	cov := v.Coverage()
	if cov[idx] == 255 {
		cov[idx] = 1
	} else {
		cov[idx]++
	}
}

// Reset zeroes total_edges, is_valid, and num_calls_executed ahead of an
// invocation; the coverage map itself is deliberately left untouched
// (history tracking lives in CoverageFeedback, not here).
func (v *View) Reset() {
	v.SetTotalEdges(0)
	v.SetIsValid(false)
	v.SetNumCallsExecuted(0)
}
