// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package fuzzer

import (
	"github.com/google/railcar/pkg/observer"
	"github.com/google/railcar/pkg/shmem"
	"github.com/google/railcar/pkg/worker"
)

// Observers is everything the fuzzing loop reads from the shared region
// between invocations (spec §4.8/§4.12): reset the validity cell, then
// read back coverage, validity, total_edges and num_calls_executed once
// the worker returns. Fuzzer is built against this interface rather than
// *shmem.View directly so tests can substitute an in-memory fake instead
// of allocating a real memfd region.
type Observers interface {
	PreExec()
	Coverage() []byte
	IsValid() bool
	TotalEdges() uint32
	NumCallsExecuted() uint32
}

// shmemObservers adapts the three pkg/observer views over one
// shmem.View to the Observers interface.
type shmemObservers struct {
	cov    *observer.CoverageObserver
	valid  *observer.ValidityObserver
	edges  *observer.ReadOnlyPointerObserver[uint32]
	calls  *observer.ReadOnlyPointerObserver[uint32]
}

// NewShmemObservers builds the production Observers implementation over
// a live shared-memory view.
func NewShmemObservers(v *shmem.View) Observers {
	return &shmemObservers{
		cov:   observer.NewCoverageObserver(v),
		valid: observer.NewValidityObserver(v),
		edges: observer.NewTotalEdgesObserver(v),
		calls: observer.NewNumCallsExecutedObserver(v),
	}
}

func (o *shmemObservers) PreExec()                { o.valid.PreExec() }
func (o *shmemObservers) Coverage() []byte         { return o.cov.Map() }
func (o *shmemObservers) IsValid() bool            { return o.valid.IsValid() }
func (o *shmemObservers) TotalEdges() uint32       { return o.edges.Get() }
func (o *shmemObservers) NumCallsExecuted() uint32 { return o.calls.Get() }

// Worker is the subset of *worker.Supervisor the fuzzing loop drives: one
// call per input, plus the restart-on-fault escape hatch spec §4.7
// describes ("the supervisor stops the child, respawns, re-inits").
type Worker interface {
	Invoke(input []byte) (worker.ExitKind, error)
	Restart() error
}
