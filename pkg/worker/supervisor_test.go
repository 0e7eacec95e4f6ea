// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package worker

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/log"
)

// fakeChild drives the other end of a pair of pipes the way a real worker
// binary would, without spawning any process: it reads frames the
// Supervisor writes and replies according to script.
type fakeChild struct {
	in  io.Reader // what the supervisor wrote
	out io.Writer // what the supervisor reads
}

func newPipeSupervisor(t *testing.T) (*Supervisor, *fakeChild) {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	sup := &Supervisor{cfg: Config{Logf: log.Discard}, in: inW, out: outR, exit: make(chan error, 1), state: Spawned}
	return sup, &fakeChild{in: inR, out: outW}
}

func TestSupervisorInitHandshake(t *testing.T) {
	sup, child := newPipeSupervisor(t)
	go func() {
		tag, _, err := ReadFrame(child.in)
		require.NoError(t, err)
		require.Equal(t, tagInit, tag)
		require.NoError(t, WriteFrame(child.out, tagInitOk, InitOkMsg{}))
	}()
	require.NoError(t, sup.Init())
	assert.Equal(t, Ready, sup.State())
}

func TestSupervisorInvokeSkipsLogFramesThenReturnsCode(t *testing.T) {
	sup, child := newPipeSupervisor(t)
	sup.state = Ready
	go func() {
		tag, _, err := ReadFrame(child.in)
		require.NoError(t, err)
		require.Equal(t, tagInvoke, tag)
		require.NoError(t, WriteFrame(child.out, tagLog, LogMsg{Msg: "starting"}))
		require.NoError(t, WriteFrame(child.out, tagInvokeOk, InvokeOkMsg{Code: ExitValid}))
	}()
	kind, err := sup.Invoke([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, KindOk, kind)
	assert.Equal(t, Ready, sup.State())
}

func TestSupervisorInvokeCrashCode(t *testing.T) {
	sup, child := newPipeSupervisor(t)
	sup.state = Ready
	go func() {
		_, _, _ = ReadFrame(child.in)
		_ = WriteFrame(child.out, tagInvokeOk, InvokeOkMsg{Code: ExitCrash})
	}()
	kind, err := sup.Invoke(nil)
	require.NoError(t, err)
	assert.Equal(t, KindCrash, kind)
}

func TestSupervisorInvokeBrokenPipeReportsError(t *testing.T) {
	sup, child := newPipeSupervisor(t)
	sup.state = Ready
	child.in.(*io.PipeReader).Close()
	_, err := sup.Invoke([]byte{1})
	assert.Error(t, err)
}
