// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package feedback

import "github.com/google/railcar/pkg/worker"

// ApiProgressFeedbackTargetM is the M constant in the quadratic score
// M² − (successful−M)² − (total−M)².
const ApiProgressFeedbackTargetM = 10

// ApiProgressFeedback peaks at api chains that complete in full (spec
// §4.9): the quadratic score rewards sequences whose successful and
// total call counts both sit near M, and is interesting whenever the max
// score seen so far is exceeded.
//
// Per the carried-forward Open Question, the source reports every local
// maximum as interesting but never feeds that into StdFeedback's
// "interesting" predicate — preserved here as dead-by-default signal,
// gated behind GateInStdFeedback so the effect can be A/B compared.
type ApiProgressFeedback struct {
	maxScore        float64
	seen            bool
	GateInStdFeedback bool
}

func apiProgressScore(successful, total int) float64 {
	const m = ApiProgressFeedbackTargetM
	return float64(m*m) - sq(float64(successful-m)) - sq(float64(total-m))
}

func sq(x float64) float64 { return x * x }

func (f *ApiProgressFeedback) IsInteresting(res ExecResult) bool {
	score := apiProgressScore(res.SuccessfulCalls, res.TotalCalls)
	if !f.seen || score > f.maxScore {
		f.maxScore = score
		f.seen = true
		return true
	}
	return false
}

// StdFeedback is the composite feedback used for the corpus (spec §4.9):
// run order is validity -> total_coverage -> (valid_coverage only if
// valid) -> total_edges -> api_progress. An execution is
// corpus-interesting iff new total coverage, or (use_validity and new
// valid coverage). Crashes never reach StdFeedback; they route to
// UniqCrashFeedback instead.
type StdFeedback struct {
	Validity      *ValidityFeedback
	TotalCoverage *CoverageFeedback
	ValidCoverage *CoverageFeedback
	TotalEdges    *TotalEdgesFeedback
	ApiProgress   *ApiProgressFeedback
	UseValidity   bool
}

// NewStdFeedback builds a StdFeedback with independent trackers for each
// named sub-feedback, sized for coverageMapSize coverage cells.
func NewStdFeedback(coverageMapSize int, useValidity bool) *StdFeedback {
	return &StdFeedback{
		Validity:      &ValidityFeedback{},
		TotalCoverage: NewCoverageFeedback(coverageMapSize),
		ValidCoverage: NewCoverageFeedback(coverageMapSize),
		TotalEdges:    &TotalEdgesFeedback{},
		ApiProgress:   &ApiProgressFeedback{},
		UseValidity:   useValidity,
	}
}

// Run evaluates every sub-feedback in the fixed order spec §4.9
// prescribes and returns the corpus-interesting verdict.
func (f *StdFeedback) Run(res ExecResult) bool {
	isValid := f.Validity.IsInteresting(res)
	newTotal := f.TotalCoverage.IsInteresting(res)
	newValid := false
	if isValid {
		newValid = f.ValidCoverage.IsInteresting(res)
	}
	f.TotalEdges.IsInteresting(res)
	apiInteresting := f.ApiProgress.IsInteresting(res)
	_ = apiInteresting // preserved signal; see ApiProgressFeedback's GateInStdFeedback doc

	interesting := newTotal || (f.UseValidity && newValid)
	if f.ApiProgress.GateInStdFeedback {
		interesting = interesting || apiInteresting
	}
	return interesting
}

// UniqCrashFeedback is the objective (spec §4.9): interesting iff the
// exit was Crash/Timeout-equivalent, the input was valid, and the crash
// widens known coverage — only unique-by-coverage valid crashes persist
// to the crashes directory.
type UniqCrashFeedback struct {
	crashCoverage *CoverageFeedback
}

// NewUniqCrashFeedback builds a UniqCrashFeedback with its own coverage
// history (CrashCoverage, independent of StdFeedback's trackers).
func NewUniqCrashFeedback(coverageMapSize int) *UniqCrashFeedback {
	return &UniqCrashFeedback{crashCoverage: NewCoverageFeedback(coverageMapSize)}
}

func (f *UniqCrashFeedback) IsInteresting(res ExecResult) bool {
	// Only KindCrash is checked. Neither the supervisor nor the fuzzing
	// loop puts a time limit on an invocation, so no timeout is ever
	// reported; worker faults surface as KindCrash.
	if res.Kind != worker.KindCrash {
		return false
	}
	if !res.IsValid {
		return false
	}
	return f.crashCoverage.IsInteresting(res)
}
