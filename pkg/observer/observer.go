// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package observer implements the three thin views over the shared
// memory region that the fuzzing loop consults between invocations
// (spec §4.8, C8).
package observer

import "github.com/google/railcar/pkg/shmem"

// CoverageObserver exposes the region's saturating hit-count map.
type CoverageObserver struct {
	view *shmem.View
}

func NewCoverageObserver(v *shmem.View) *CoverageObserver {
	return &CoverageObserver{view: v}
}

// Map returns the raw coverage map as observed after the last execution.
func (o *CoverageObserver) Map() []byte {
	return o.view.Coverage()
}

// ValidityObserver resets is_valid to true before each execution and
// reports whatever the worker left it as afterward.
type ValidityObserver struct {
	view *shmem.View
}

func NewValidityObserver(v *shmem.View) *ValidityObserver {
	return &ValidityObserver{view: v}
}

// PreExec resets is_valid to true, the default a well-behaved worker
// never needs to touch.
func (o *ValidityObserver) PreExec() {
	o.view.SetIsValid(true)
}

// IsValid reports is_valid as of the last execution.
func (o *ValidityObserver) IsValid() bool {
	return o.view.IsValid()
}

// ReadOnlyPointerObserver exposes a single scalar field of the shared
// region without allowing the fuzzing loop to mutate it; Get is the only
// operation.
type ReadOnlyPointerObserver[T any] struct {
	get func() T
}

func (o *ReadOnlyPointerObserver[T]) Get() T {
	return o.get()
}

// NewTotalEdgesObserver exposes total_edges.
func NewTotalEdgesObserver(v *shmem.View) *ReadOnlyPointerObserver[uint32] {
	return &ReadOnlyPointerObserver[uint32]{get: v.TotalEdges}
}

// NewNumCallsExecutedObserver exposes num_calls_executed.
func NewNumCallsExecutedObserver(v *shmem.View) *ReadOnlyPointerObserver[uint32] {
	return &ReadOnlyPointerObserver[uint32]{get: v.NumCallsExecuted}
}
