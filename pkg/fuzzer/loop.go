// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package fuzzer composes the fuzzing loop (spec §4.12, C12): generator,
// mutator, executor, feedback and scheduler wired around one of the three
// input kinds (kinds.go). Fuzzer is a long-lived object holding the
// corpus/feedback/PRNG plus a Config the embedding program populates,
// rather than free functions.
package fuzzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/google/railcar/pkg/corpus"
	"github.com/google/railcar/pkg/corpusio"
	"github.com/google/railcar/pkg/feedback"
	"github.com/google/railcar/pkg/log"
	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
	"github.com/google/railcar/pkg/shmem"
	"github.com/google/railcar/pkg/stats"
	"github.com/google/railcar/pkg/worker"
	"github.com/google/railcar/prog"
)

// InitialCorpusSize is how many times the generator runs to seed the
// corpus when no on-disk seed corpus yields any input (spec §4.12,
// INITIAL_CORPUS_SIZE=32).
const InitialCorpusSize = 32

// baseWeight is every fresh corpus entry's starting scheduler score,
// before the ValidityFeedback-derived 2x multiplier (spec §4.10).
const baseWeight = 10

// Config parameterizes one fuzzing client. One of the ApplyXxxKind
// functions in kinds.go must be called to populate Generate/Operators/
// Clone/Encode/Decode/TotalCalls before the Config is usable.
type Config struct {
	Schema      *schema.Schema
	Observers   Observers
	Worker      Worker
	Logf        log.Logf
	UseValidity bool
	// GateAPIProgressInStdFeedback answers the carried-forward open
	// question (spec §9, SPEC_FULL §9): ApiProgressFeedback's local-maxima
	// signal is always tracked, but only folds into StdFeedback's
	// corpus-interesting predicate when this is true.
	GateAPIProgressInStdFeedback bool

	// Generate produces a fresh input from the schema; set by an
	// ApplyXxxKind call.
	Generate func(r rand.Source, sc *schema.Schema) (interface{}, error)
	// Operators is the mutation-operator table scheduled uniformly
	// (spec §4.11); set by an ApplyXxxKind call.
	Operators []Operator
	// Clone deep-copies an input of this kind, used to support Undo.
	Clone func(v interface{}) interface{}
	// Encode serializes an input to the bytes the harness hands the
	// worker (spec §4.12: "serializes input -> bytes").
	Encode func(v interface{}) ([]byte, error)
	// Decode deserializes bytes loaded from the seed corpus back into
	// this kind's native type. May be nil if seed-corpus loading isn't
	// used (e.g. tests that only exercise the generator path).
	Decode func(data []byte) (interface{}, error)
	// TotalCalls reports how many API calls an input contains, feeding
	// ApiProgressFeedback's "total" term.
	TotalCalls func(v interface{}) int
}

// Fuzzer is one fuzzing client: the corpus, the objective ("crashes")
// corpus, the feedback set, the PRNG, and the stats counters spec §6
// names, bound together by RunMutational.
type Fuzzer struct {
	cfg Config
	rnd rand.Source

	corpus    *corpus.Corpus
	objective *corpus.Corpus
	std       *feedback.StdFeedback
	crash     *feedback.UniqCrashFeedback
	stats     *stats.Stats
}

// New builds a Fuzzer bound to cfg. seed drives the client's own PRNG
// (schema-level generation/mutation decisions), independent of whatever
// PRNG the worker uses to materialize constant values.
func New(cfg Config, seed int64) *Fuzzer {
	if cfg.Logf == nil {
		cfg.Logf = log.Discard
	}
	std := feedback.NewStdFeedback(shmem.CoverageMapSize, cfg.UseValidity)
	std.ApiProgress.GateInStdFeedback = cfg.GateAPIProgressInStdFeedback
	return &Fuzzer{
		cfg:       cfg,
		rnd:       rand.Wrap(rand.New(seed)),
		corpus:    corpus.New(),
		objective: corpus.New(),
		std:       std,
		crash:     feedback.NewUniqCrashFeedback(shmem.CoverageMapSize),
		stats:     stats.New(),
	}
}

// Corpus exposes the scheduler-facing corpus (read-only outside the
// package: callers use Stats/Count for reporting).
func (f *Fuzzer) Corpus() *corpus.Corpus { return f.corpus }

// Objective exposes the crashes corpus.
func (f *Fuzzer) Objective() *corpus.Corpus { return f.objective }

// Stats exposes the user-stat counters.
func (f *Fuzzer) Stats() *stats.Stats { return f.stats }

// LoadSeedCorpus loads every entry from dir, decoding with cfg.Decode. If
// dir is empty (or yields zero inputs), the caller should fall back to
// GenerateInitialCorpus (spec §4.12: "if the state has no corpus, load the
// seed corpus from disk; if that yields zero inputs, run the generator
// INITIAL_CORPUS_SIZE times").
func (f *Fuzzer) LoadSeedCorpus(dir *corpusio.Dir) (int, error) {
	if f.cfg.Decode == nil {
		return 0, fmt.Errorf("fuzzer: Config.Decode is nil, cannot load seed corpus")
	}
	raw, err := dir.LoadAll()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, data := range raw {
		v, err := f.cfg.Decode(data)
		if err != nil {
			f.cfg.Logf(0, "fuzzer: skipping unparseable seed entry: %v", err)
			continue
		}
		f.addToCorpus(v, feedback.InputValidityMetadata{IsValid: true})
		n++
	}
	return n, nil
}

// GenerateInitialCorpus runs the generator InitialCorpusSize times,
// adding every produced input straight to the corpus without going
// through the executor (spec §4.12). Inputs that error out of Generate
// are skipped and logged; this is a structural error (spec §7), not a
// fatal one.
func (f *Fuzzer) GenerateInitialCorpus() (int, error) {
	if f.cfg.Generate == nil {
		return 0, fmt.Errorf("fuzzer: Config.Generate is nil; call an ApplyXxxKind first")
	}
	n := 0
	for i := 0; i < InitialCorpusSize; i++ {
		v, err := f.cfg.Generate(f.rnd, f.cfg.Schema)
		if err != nil {
			f.cfg.Logf(1, "fuzzer: seed generation %d failed: %v", i, err)
			continue
		}
		f.addToCorpus(v, feedback.InputValidityMetadata{})
		n++
	}
	return n, nil
}

func (f *Fuzzer) addToCorpus(v interface{}, validity feedback.InputValidityMetadata) int {
	return f.corpus.Add(v, baseWeight, validity)
}

// Execute runs one input through the harness: encode, invoke the worker,
// classify the exit, read the observers, and judge it against StdFeedback
// and the crash objective. It does not touch the corpus; callers decide
// whether to add the input based on the returned verdict (kept separate
// so RunMutational can apply it to freshly generated and freshly mutated
// inputs alike).
type ExecuteResult struct {
	Res         feedback.ExecResult
	Interesting bool
	Crashed     bool
}

func (f *Fuzzer) Execute(v interface{}) (ExecuteResult, error) {
	data, err := f.cfg.Encode(v)
	if err != nil {
		return ExecuteResult{}, fmt.Errorf("fuzzer: encode: %w", err)
	}
	f.cfg.Observers.PreExec()
	kind, err := f.cfg.Worker.Invoke(data)
	if err != nil {
		f.cfg.Logf(0, "fuzzer: worker fault, restarting: %v", err)
		if rerr := f.cfg.Worker.Restart(); rerr != nil {
			return ExecuteResult{}, fmt.Errorf("fuzzer: restart after fault: %w", rerr)
		}
		kind = worker.KindCrash
	}
	res := feedback.ExecResult{
		Coverage:        f.cfg.Observers.Coverage(),
		IsValid:         f.cfg.Observers.IsValid(),
		TotalEdges:      f.cfg.Observers.TotalEdges(),
		Kind:            kind,
		SuccessfulCalls: int(f.cfg.Observers.NumCallsExecuted()),
		TotalCalls:      f.cfg.TotalCalls(v),
	}
	f.stats.Set(stats.TotalEdges, float64(res.TotalEdges))
	f.stats.ObserveApiProgressScore(apiProgressScoreOf(res))

	if kind == worker.KindCrash {
		interesting := f.crash.IsInteresting(res)
		if interesting {
			meta := f.std.Validity.OnAppend(res)
			f.objective.Add(v, baseWeight, meta)
		}
		return ExecuteResult{Res: res, Crashed: true, Interesting: interesting}, nil
	}

	interesting := f.std.Run(res)
	f.stats.Set(stats.TotalCoverage, f.std.TotalCoverage.Ratio())
	if res.IsValid {
		f.stats.Add(stats.ValidExecs, 1)
	}
	return ExecuteResult{Res: res, Interesting: interesting}, nil
}

func apiProgressScoreOf(res feedback.ExecResult) float64 {
	const m = feedback.ApiProgressFeedbackTargetM
	succ := float64(res.SuccessfulCalls - m)
	total := float64(res.TotalCalls - m)
	return float64(m*m) - succ*succ - total*total
}

// RunMutational runs the mutational stage (spec §4.12) until ctx is
// cancelled or iterations steps complete (iterations <= 0 means
// unbounded): pick a corpus entry by weighted scheduler, clone it, apply
// one randomly chosen Operator, execute the result, and add it to the
// corpus when StdFeedback says it's interesting. A HugeGraph-style Undo
// from the operator reverts to the pre-mutation clone before executing;
// mutation Skipped (precondition not met) skips the step entirely. Per
// spec §4.12 ("on shutdown, Terminate the worker"), the caller is
// expected to call Config.Worker.(*worker.Supervisor).Terminate once
// RunMutational returns.
func (f *Fuzzer) RunMutational(ctx context.Context, iterations int) error {
	if len(f.cfg.Operators) == 0 {
		return fmt.Errorf("fuzzer: Config.Operators is empty; call an ApplyXxxKind first")
	}
	for i := 0; iterations <= 0 || i < iterations; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := f.step(); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fuzzer) step() error {
	entry, ok := f.corpus.ChooseWeighted(f.rnd)
	if !ok {
		v, err := f.cfg.Generate(f.rnd, f.cfg.Schema)
		if err != nil {
			return fmt.Errorf("fuzzer: corpus empty and generate failed: %w", err)
		}
		f.addToCorpus(v, feedback.InputValidityMetadata{})
		return nil
	}

	candidate := f.cfg.Clone(entry.Data)
	pre := f.cfg.Clone(candidate)
	op, _ := rand.Choose(f.rnd, f.cfg.Operators)
	result := op(f.rnd, f.cfg.Schema, candidate, func() (interface{}, bool) {
		donor, ok := f.corpus.ChoosePlain(f.rnd)
		if !ok {
			return nil, false
		}
		return donor.Data, true
	})
	switch result {
	case prog.Skipped:
		return nil
	case prog.Undo:
		candidate = pre
	}

	res, err := f.Execute(candidate)
	if err != nil {
		return err
	}
	if res.Crashed {
		return nil
	}
	if res.Interesting {
		meta := f.std.Validity.OnAppend(res.Res)
		f.addToCorpus(candidate, meta)
	}
	return nil
}

// RunClients runs each clientFn in its own goroutine under an errgroup,
// waits for all of them and returns the first error; the context handed
// to the clients is cancelled once any of them fails. Each clientFn is
// expected to close over its own *Fuzzer and Worker.
func RunClients(ctx context.Context, clientFn ...func(ctx context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, fn := range clientFn {
		fn := fn
		g.Go(func() error { return fn(ctx) })
	}
	return g.Wait()
}
