// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package feedback implements the named feedback and objective types that
// judge each execution's interestingness (spec §4.9, C9), grounded on the
// tracker/history-map split of a typical coverage-feedback loop: a small
// tracker owns the novelty history, the feedback itself is a thin
// stateless-looking wrapper calling into it.
package feedback

import "github.com/google/railcar/pkg/worker"

// ExecResult is everything a feedback needs to see about one execution:
// the raw coverage map, whether the run was valid, total_edges as
// reported by the shared region, and how the child exited.
type ExecResult struct {
	Coverage   []byte
	IsValid    bool
	TotalEdges uint32
	Kind       worker.ExitKind
	// SuccessfulCalls/TotalCalls describe how much of an ApiSeq's call
	// chain actually ran (num_calls_executed from shared memory vs. the
	// sequence's own length); only ApiProgressFeedback consults them.
	SuccessfulCalls int
	TotalCalls      int
}

// Feedback judges whether one ExecResult is "interesting" against the
// history it has accumulated so far.
type Feedback interface {
	IsInteresting(res ExecResult) bool
}

// coverageTracker keeps a saturated-bucket-or-lower history per cell and
// reports whether any cell just reached a new high.
type coverageTracker struct {
	history []byte
}

func newCoverageTracker(size int) *coverageTracker {
	return &coverageTracker{history: make([]byte, size)}
}

func (t *coverageTracker) observe(cov []byte) bool {
	interesting := false
	for i, v := range cov {
		if i >= len(t.history) {
			break
		}
		if v > t.history[i] {
			t.history[i] = v
			interesting = true
		}
	}
	return interesting
}

// CoverageFeedback is the parametrized feedback reused under three names
// (spec §4.9): TotalCoverage, ValidCoverage, CrashCoverage each get their
// own instance and their own independent history.
type CoverageFeedback struct {
	tracker *coverageTracker
}

// NewCoverageFeedback builds a CoverageFeedback tracking size coverage
// cells. Pass shmem.CoverageMapSize in production; a smaller size is
// useful for focused tests.
func NewCoverageFeedback(size int) *CoverageFeedback {
	return &CoverageFeedback{tracker: newCoverageTracker(size)}
}

func (f *CoverageFeedback) IsInteresting(res ExecResult) bool {
	return f.tracker.observe(res.Coverage)
}

// Ratio reports the fraction of tracked coverage cells that have ever
// been hit, the "totalcoverage"/"validcoverage" user-stat (spec §6: user
// stat keys, kind Ratio).
func (f *CoverageFeedback) Ratio() float64 {
	if len(f.tracker.history) == 0 {
		return 0
	}
	covered := 0
	for _, v := range f.tracker.history {
		if v > 0 {
			covered++
		}
	}
	return float64(covered) / float64(len(f.tracker.history))
}

// ValidityFeedback is interesting iff is_valid after execution; it also
// tracks the corpus-facing user-stat counters spec §4.9 names.
type ValidityFeedback struct {
	NumValidExecutions int64
	NumValidCorpus     int64
}

func (f *ValidityFeedback) IsInteresting(res ExecResult) bool {
	if res.IsValid {
		f.NumValidExecutions++
	}
	return res.IsValid
}

// OnAppend is called when an interesting input is actually added to the
// corpus; it bumps num_valid_corpus and returns the metadata to attach.
func (f *ValidityFeedback) OnAppend(res ExecResult) InputValidityMetadata {
	if res.IsValid {
		f.NumValidCorpus++
	}
	return InputValidityMetadata{IsValid: res.IsValid}
}

// InputValidityMetadata is attached to a testcase when it's added to the
// corpus; the scheduler reads IsValid to double the testcase's weight.
type InputValidityMetadata struct {
	IsValid bool
}

// TotalEdgesFeedback detects a monotonic increase in total_edges; it is
// an implementation error (per spec §4.9) for total_edges to ever
// decrease, so ObserveError returns that condition for the caller to
// surface however it surfaces structural errors.
type TotalEdgesFeedback struct {
	max uint32
	seen bool
}

func (f *TotalEdgesFeedback) IsInteresting(res ExecResult) bool {
	if !f.seen || res.TotalEdges > f.max {
		f.max = res.TotalEdges
		f.seen = true
		return true
	}
	return false
}

// ObserveError reports whether res.TotalEdges decreased from the known
// maximum — a condition spec §4.9 calls out as an error, distinct from
// "not interesting".
func (f *TotalEdgesFeedback) ObserveError(res ExecResult) bool {
	return f.seen && res.TotalEdges < f.max
}
