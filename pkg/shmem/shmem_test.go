// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package shmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocRoundTrip(t *testing.T) {
	r, err := Alloc()
	require.NoError(t, err)
	defer r.Close()

	v := r.View()
	v.SetTotalEdges(42)
	v.SetIsValid(true)
	v.SetNumCallsExecuted(7)
	assert.Equal(t, uint32(42), v.TotalEdges())
	assert.True(t, v.IsValid())
	assert.Equal(t, uint32(7), v.NumCallsExecuted())
}

func TestHitEdgeSaturates(t *testing.T) {
	r, err := Alloc()
	require.NoError(t, err)
	defer r.Close()
	v := r.View()
	for i := 0; i < 255; i++ {
		v.HitEdge(10)
	}
	assert.Equal(t, byte(255), v.Coverage()[10])
	v.HitEdge(10)
	assert.Equal(t, byte(1), v.Coverage()[10])
}

func TestResetClearsHeaderNotCoverage(t *testing.T) {
	r, err := Alloc()
	require.NoError(t, err)
	defer r.Close()
	v := r.View()
	v.HitEdge(5)
	v.SetTotalEdges(3)
	v.SetIsValid(true)
	v.Reset()
	assert.Equal(t, uint32(0), v.TotalEdges())
	assert.False(t, v.IsValid())
	assert.Equal(t, byte(1), v.Coverage()[5])
}
