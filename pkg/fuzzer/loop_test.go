// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package fuzzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/schema"
	"github.com/google/railcar/pkg/worker"
)

func numTG() *schema.TypeGuess { return schema.KindOnly(schema.Number) }

func loopTestSchema() *schema.Schema {
	s := schema.NewSchema()
	s.Add(&schema.SignatureGuess{
		Name:       "identity",
		Conv:       schema.Free,
		Args:       []*schema.TypeGuess{numTG()},
		ReturnType: numTG(),
	})
	s.Add(&schema.SignatureGuess{
		Name:       "makeWidget",
		Conv:       schema.Constructor,
		Args:       []*schema.TypeGuess{numTG()},
		ReturnType: schema.KindOnly(schema.Class, []string{"Widget"}),
	})
	return s
}

// fakeObservers is an in-memory Observers substitute so tests don't need
// a real memfd region (spec §4.8's thin-view contract, faked per
// harness.go's doc comment).
type fakeObservers struct {
	cov     []byte
	valid   bool
	edges   uint32
	calls   uint32
	resets  int
}

func (f *fakeObservers) PreExec()                { f.resets++; f.valid = true }
func (f *fakeObservers) Coverage() []byte         { return f.cov }
func (f *fakeObservers) IsValid() bool            { return f.valid }
func (f *fakeObservers) TotalEdges() uint32       { return f.edges }
func (f *fakeObservers) NumCallsExecuted() uint32 { return f.calls }

// fakeWorker scripts a sequence of ExitKinds, one per Invoke call, and
// counts restarts — the test double for the supervisor's restart-on-fault
// contract (spec §4.7, scenario 8).
type fakeWorker struct {
	kinds    []worker.ExitKind
	i        int
	failNext bool
	restarts int
}

func (w *fakeWorker) Invoke(input []byte) (worker.ExitKind, error) {
	if w.failNext {
		w.failNext = false
		return worker.KindCrash, assertErr
	}
	if w.i >= len(w.kinds) {
		return worker.KindOk, nil
	}
	k := w.kinds[w.i]
	w.i++
	return k, nil
}

func (w *fakeWorker) Restart() error {
	w.restarts++
	return nil
}

var assertErr = assertError("broken pipe")

type assertError string

func (e assertError) Error() string { return string(e) }

func newLoopFixture(t *testing.T, kinds []worker.ExitKind) (*Fuzzer, *fakeObservers, *fakeWorker) {
	t.Helper()
	obs := &fakeObservers{cov: make([]byte, 64), edges: 1, calls: 1}
	w := &fakeWorker{kinds: kinds}
	cfg := Config{Schema: loopTestSchema(), Observers: obs, Worker: w}
	ApplyApiSeqKind(&cfg)
	f := New(cfg, 7)
	return f, obs, w
}

func TestGenerateInitialCorpus(t *testing.T) {
	f, _, _ := newLoopFixture(t, nil)
	n, err := f.GenerateInitialCorpus()
	require.NoError(t, err)
	assert.Equal(t, InitialCorpusSize, n)
	assert.Equal(t, InitialCorpusSize, f.Corpus().Count())
}

func TestExecuteMarksValidAndInteresting(t *testing.T) {
	f, obs, _ := newLoopFixture(t, []worker.ExitKind{worker.KindOk})
	obs.cov[3] = 5
	v, err := f.cfg.Generate(f.rnd, f.cfg.Schema)
	require.NoError(t, err)
	res, err := f.Execute(v)
	require.NoError(t, err)
	assert.True(t, res.Interesting)
	assert.False(t, res.Crashed)
	assert.Equal(t, float64(1), f.Stats().Get("validexecs"))
}

func TestExecuteCrashRoutesToObjective(t *testing.T) {
	f, obs, _ := newLoopFixture(t, []worker.ExitKind{worker.KindCrash})
	obs.cov[9] = 1
	v, err := f.cfg.Generate(f.rnd, f.cfg.Schema)
	require.NoError(t, err)
	res, err := f.Execute(v)
	require.NoError(t, err)
	assert.True(t, res.Crashed)
	assert.True(t, res.Interesting)
	assert.Equal(t, 1, f.Objective().Count())
	assert.Equal(t, 0, f.Corpus().Count())
}

func TestExecuteRestartsOnWorkerFault(t *testing.T) {
	f, _, w := newLoopFixture(t, []worker.ExitKind{worker.KindOk})
	w.failNext = true
	v, err := f.cfg.Generate(f.rnd, f.cfg.Schema)
	require.NoError(t, err)
	res, err := f.Execute(v)
	require.NoError(t, err)
	assert.Equal(t, 1, w.restarts)
	assert.True(t, res.Crashed)
}

func TestRunMutationalGrowsOrHoldsCorpus(t *testing.T) {
	f, _, _ := newLoopFixture(t, nil)
	_, err := f.GenerateInitialCorpus()
	require.NoError(t, err)
	before := f.Corpus().Count()
	err = f.RunMutational(context.Background(), 25)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, f.Corpus().Count(), before)
}

func TestRunMutationalRespectsCancellation(t *testing.T) {
	f, _, _ := newLoopFixture(t, nil)
	_, err := f.GenerateInitialCorpus()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = f.RunMutational(ctx, 1000)
	assert.ErrorIs(t, err, context.Canceled)
}
