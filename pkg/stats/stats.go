// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package stats implements the user-stat keys the fuzzing loop reports to
// an external writer (spec §6: totalcoverage, validexecs, totaledges,
// validcorpus) as named counters, each carrying its own multi-client
// reduction rule (max for point-in-time gauges, sum for cumulative
// counts) so that one client's Stats can be folded into a broker-level
// aggregate without the caller having to know which reducer applies to
// which key.
package stats

import (
	"sync"

	"github.com/VividCortex/gohistogram"
)

func maxReduce(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}

func sumReduce(a, b float64) float64 {
	return a + b
}

// stat is one named value plus the rule used to fold another client's
// value of the same name into it.
type stat struct {
	value  float64
	reduce func(a, b float64) float64
}

// Stats is the per-client counter set plus the ApiProgressFeedback score
// histogram (spec §9's dark-launch diagnostic). Safe for concurrent use.
type Stats struct {
	mu       sync.Mutex
	counters map[string]*stat
	apiScore *gohistogram.NumericHistogram
}

// Standard user-stat keys (spec §6).
const (
	TotalCoverage = "totalcoverage"
	ValidExecs    = "validexecs"
	TotalEdges    = "totaledges"
	ValidCorpus   = "validcorpus"
)

// histogramBins bounds the approximate histogram's resolution; 64 bins is
// ample for the bounded ApiProgressFeedback score range.
const histogramBins = 64

// New builds a Stats with the four standard keys pre-registered:
// totalcoverage/totaledges take the max seen across clients (they're
// monotonic watermarks), validexecs/validcorpus sum (they're tallies).
func New() *Stats {
	return &Stats{
		counters: map[string]*stat{
			TotalCoverage: {reduce: maxReduce},
			ValidExecs:    {reduce: sumReduce},
			TotalEdges:    {reduce: maxReduce},
			ValidCorpus:   {reduce: sumReduce},
		},
		apiScore: gohistogram.NewHistogram(histogramBins),
	}
}

// Set overwrites name's current value, registering it with a max reducer
// if not already known.
func (s *Stats) Set(name string, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(name, maxReduce)
	st.value = v
}

// Add increments name by delta, registering it with a sum reducer if not
// already known.
func (s *Stats) Add(name string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(name, sumReduce)
	st.value += delta
}

// Get returns name's current value, or 0 if never set.
func (s *Stats) Get(name string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.counters[name]
	if !ok {
		return 0
	}
	return st.value
}

func (s *Stats) get(name string, reduce func(a, b float64) float64) *stat {
	st, ok := s.counters[name]
	if !ok {
		st = &stat{reduce: reduce}
		s.counters[name] = st
	}
	return st
}

// ObserveApiProgressScore feeds one ApiProgressFeedback score into the
// running histogram used by the gated dark-launch diagnostic.
func (s *Stats) ObserveApiProgressScore(score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiScore.Add(score)
}

// ApiProgressQuantile reports the q-th quantile (0..1) of observed
// ApiProgressFeedback scores.
func (s *Stats) ApiProgressQuantile(q float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiScore.Quantile(q)
}

// Snapshot returns a point-in-time copy of every named counter.
func (s *Stats) Snapshot() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.counters))
	for name, st := range s.counters {
		out[name] = st.value
	}
	return out
}

// Merge folds other's counters into s using each counter's own reducer;
// a name present only in other is adopted as-is. The ApiProgressFeedback
// histogram stays per-process: gohistogram's approximate bins don't
// combine losslessly, and the diagnostic is gated off by default anyway
// (see feedback.ApiProgressFeedback.GateInStdFeedback), so a broker reads
// each client's quantiles independently rather than merging them.
func (s *Stats) Merge(other *Stats) {
	other.mu.Lock()
	snapshot := make(map[string]*stat, len(other.counters))
	for name, st := range other.counters {
		snapshot[name] = &stat{value: st.value, reduce: st.reduce}
	}
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, st := range snapshot {
		cur, ok := s.counters[name]
		if !ok {
			s.counters[name] = st
			continue
		}
		cur.value = cur.reduce(cur.value, st.value)
	}
}
