// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAccumulatesSumReducedCounters(t *testing.T) {
	s := New()
	s.Add(ValidExecs, 3)
	s.Add(ValidExecs, 4)
	assert.Equal(t, float64(7), s.Get(ValidExecs))
}

func TestSetKeepsLatestValueForMaxReducedCounters(t *testing.T) {
	s := New()
	s.Set(TotalEdges, 10)
	s.Set(TotalEdges, 7)
	assert.Equal(t, float64(7), s.Get(TotalEdges))
}

func TestMergeAppliesPerCounterReducer(t *testing.T) {
	a := New()
	a.Add(ValidExecs, 5)
	a.Set(TotalCoverage, 0.4)

	b := New()
	b.Add(ValidExecs, 2)
	b.Set(TotalCoverage, 0.6)

	a.Merge(b)
	assert.Equal(t, float64(7), a.Get(ValidExecs))
	assert.Equal(t, 0.6, a.Get(TotalCoverage))
}

func TestApiProgressQuantileTracksObservedScores(t *testing.T) {
	s := New()
	for _, v := range []float64{10, 20, 30, 40, 50} {
		s.ObserveApiProgressScore(v)
	}
	q := s.ApiProgressQuantile(0.5)
	require.InDelta(t, 30, q, 15)
}

func TestGetOnUnknownCounterReturnsZero(t *testing.T) {
	s := New()
	assert.Equal(t, float64(0), s.Get("unknown"))
}
