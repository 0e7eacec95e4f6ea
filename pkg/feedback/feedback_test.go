// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/google/railcar/pkg/worker"
)

func TestCoverageFeedbackInterestingOnNewHigh(t *testing.T) {
	f := NewCoverageFeedback(4)
	assert.True(t, f.IsInteresting(ExecResult{Coverage: []byte{1, 0, 0, 0}}))
	assert.False(t, f.IsInteresting(ExecResult{Coverage: []byte{1, 0, 0, 0}}))
	assert.True(t, f.IsInteresting(ExecResult{Coverage: []byte{2, 0, 0, 0}}))
}

func TestValidityFeedbackTracksStats(t *testing.T) {
	f := &ValidityFeedback{}
	assert.True(t, f.IsInteresting(ExecResult{IsValid: true}))
	assert.False(t, f.IsInteresting(ExecResult{IsValid: false}))
	assert.Equal(t, int64(1), f.NumValidExecutions)
	meta := f.OnAppend(ExecResult{IsValid: true})
	assert.True(t, meta.IsValid)
	assert.Equal(t, int64(1), f.NumValidCorpus)
}

func TestTotalEdgesFeedbackMonotonic(t *testing.T) {
	f := &TotalEdgesFeedback{}
	assert.True(t, f.IsInteresting(ExecResult{TotalEdges: 5}))
	assert.False(t, f.IsInteresting(ExecResult{TotalEdges: 5}))
	assert.True(t, f.IsInteresting(ExecResult{TotalEdges: 6}))
	assert.True(t, f.ObserveError(ExecResult{TotalEdges: 3}))
}

func TestApiProgressFeedbackPeaksNearM(t *testing.T) {
	f := &ApiProgressFeedback{}
	assert.True(t, f.IsInteresting(ExecResult{SuccessfulCalls: 5, TotalCalls: 5}))
	assert.True(t, f.IsInteresting(ExecResult{SuccessfulCalls: 10, TotalCalls: 10}))
	assert.False(t, f.IsInteresting(ExecResult{SuccessfulCalls: 1, TotalCalls: 1}))
}

func TestStdFeedbackGatesApiProgressByDefault(t *testing.T) {
	sf := NewStdFeedback(4, true)
	res := ExecResult{Coverage: []byte{0, 0, 0, 0}, IsValid: false, SuccessfulCalls: 10, TotalCalls: 10}
	assert.False(t, sf.Run(res))
}

func TestStdFeedbackInterestingOnNewTotalCoverage(t *testing.T) {
	sf := NewStdFeedback(4, true)
	res := ExecResult{Coverage: []byte{1, 0, 0, 0}, IsValid: false}
	assert.True(t, sf.Run(res))
}

func TestUniqCrashFeedbackRequiresValidCrash(t *testing.T) {
	f := NewUniqCrashFeedback(4)
	assert.False(t, f.IsInteresting(ExecResult{Kind: worker.KindOk, IsValid: true, Coverage: []byte{1, 0, 0, 0}}))
	assert.False(t, f.IsInteresting(ExecResult{Kind: worker.KindCrash, IsValid: false, Coverage: []byte{1, 0, 0, 0}}))
	assert.True(t, f.IsInteresting(ExecResult{Kind: worker.KindCrash, IsValid: true, Coverage: []byte{1, 0, 0, 0}}))
}
