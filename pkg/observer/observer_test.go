// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/shmem"
)

func TestValidityObserverResetsThenReports(t *testing.T) {
	r, err := shmem.Alloc()
	require.NoError(t, err)
	defer r.Close()
	view := r.View()
	view.SetIsValid(false)

	vo := NewValidityObserver(view)
	vo.PreExec()
	assert.True(t, vo.IsValid())

	view.SetIsValid(false)
	assert.False(t, vo.IsValid())
}

func TestCoverageObserverReadsLiveMap(t *testing.T) {
	r, err := shmem.Alloc()
	require.NoError(t, err)
	defer r.Close()
	view := r.View()
	view.HitEdge(3)

	co := NewCoverageObserver(view)
	assert.Equal(t, byte(1), co.Map()[3])
}

func TestReadOnlyPointerObservers(t *testing.T) {
	r, err := shmem.Alloc()
	require.NoError(t, err)
	defer r.Close()
	view := r.View()
	view.SetTotalEdges(9)
	view.SetNumCallsExecuted(2)

	te := NewTotalEdgesObserver(view)
	nc := NewNumCallsExecutedObserver(view)
	assert.Equal(t, uint32(9), te.Get())
	assert.Equal(t, uint32(2), nc.Get())
}
