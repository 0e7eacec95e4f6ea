// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package worker

import (
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/google/railcar/pkg/log"
)

// maxLogLineBytes bounds how much of an interleaved Log frame's message is
// kept: workers under fuzzing can emit arbitrarily large diagnostic output,
// and the supervisor must not let one noisy child grow its own log buffer
// unbounded.
const maxLogLineBytes = 4096

// truncateLog trims an oversized worker Log frame to its first/last half,
// reusing pkg/log's general-purpose Truncate helper.
func truncateLog(msg string) string {
	if len(msg) <= maxLogLineBytes {
		return msg
	}
	return string(log.Truncate([]byte(msg), maxLogLineBytes/2, maxLogLineBytes/2))
}

// State is one state of the per-child supervisor state machine (spec
// §4.7): Spawned -> Initialized -> {Ready <-> Invoking} -> Terminated.
type State int

const (
	Spawned State = iota
	Initialized
	Ready
	Invoking
	Terminated
)

func (s State) String() string {
	switch s {
	case Spawned:
		return "Spawned"
	case Initialized:
		return "Initialized"
	case Ready:
		return "Ready"
	case Invoking:
		return "Invoking"
	case Terminated:
		return "Terminated"
	default:
		return "State(?)"
	}
}

// Config parameterizes one worker child: the external binary to execute,
// how to initialize it, and a Logf closure for diagnostics, threading
// logging through a Config field rather than a package global.
type Config struct {
	Binary     string
	Args       []string
	Entrypoint string
	Mode       Mode
	SchemaFile string
	ShmemDesc  int
	ConfigFile string
	Debug      bool
	Logf       log.Logf
}

// Supervisor manages one child process's lifecycle: spawn, frame-level
// init/invoke/terminate, and fault-triggered restart.
type Supervisor struct {
	cfg   Config
	cmd   *exec.Cmd
	in    io.WriteCloser
	out   io.ReadCloser
	state State
	exit  chan error
}

// NewSupervisor constructs a supervisor bound to cfg. The child is not
// spawned until Spawn is called.
func NewSupervisor(cfg Config) *Supervisor {
	if cfg.Logf == nil {
		cfg.Logf = log.Discard
	}
	return &Supervisor{cfg: cfg, state: Terminated}
}

// Spawn starts the child process and dups its pipes, mirroring the
// teacher's exec.Command + goroutine-based cmd.Wait() pattern
// (pkg/rpcserver/local.go). On Linux the child's PDEATHSIG is set so it
// dies if this process dies for any reason (spec §4.7).
func (s *Supervisor) Spawn() error {
	cmd := exec.Command(s.cfg.Binary, s.cfg.Args...)
	setPdeathsig(cmd)
	if s.cfg.Debug {
		cmd.Stderr = nil // inherited; left nil lets it default to the parent's stderr in debug builds
	} else {
		cmd.Stderr = io.Discard
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("worker: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("worker: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("worker: start: %w", err)
	}
	s.cmd = cmd
	s.in = stdin
	s.out = stdout
	s.exit = make(chan error, 1)
	go func() { s.exit <- cmd.Wait() }()
	s.state = Spawned
	return nil
}

// Init sends the Init frame and waits for InitOk, transitioning to
// Initialized then Ready on success.
func (s *Supervisor) Init() error {
	msg := InitMsg{
		Mode:       s.cfg.Mode,
		Entrypoint: s.cfg.Entrypoint,
		SchemaFile: s.cfg.SchemaFile,
		ShmemDesc:  s.cfg.ShmemDesc,
		ConfigFile: s.cfg.ConfigFile,
	}
	if err := WriteFrame(s.in, tagInit, msg); err != nil {
		return err
	}
	tag, body, err := ReadFrame(s.out)
	if err != nil {
		return fmt.Errorf("worker: read InitOk: %w", err)
	}
	if tag != tagInitOk {
		return fmt.Errorf("worker: expected InitOk, got frame tag %d", tag)
	}
	var ack InitOkMsg
	if err := unmarshalFrame(body, &ack); err != nil {
		return err
	}
	s.state = Initialized
	s.state = Ready
	return nil
}

// Invoke sends one input to the worker and classifies its response
// (spec §4.7). Log frames interleaved before InvokeOk are forwarded to
// Logf and do not end the round-trip.
func (s *Supervisor) Invoke(input []byte) (ExitKind, error) {
	s.state = Invoking
	if err := WriteFrame(s.in, tagInvoke, InvokeMsg{Bytes: input}); err != nil {
		return KindCrash, err
	}
	for {
		tag, body, err := ReadFrame(s.out)
		if err != nil {
			return KindCrash, err
		}
		switch tag {
		case tagLog:
			var m LogMsg
			if err := unmarshalFrame(body, &m); err == nil {
				s.cfg.Logf(1, "worker: %s", truncateLog(m.Msg))
			}
			continue
		case tagInvokeOk:
			var m InvokeOkMsg
			if err := unmarshalFrame(body, &m); err != nil {
				return KindCrash, err
			}
			s.state = Ready
			return m.Code.Classify(), nil
		default:
			return KindCrash, fmt.Errorf("worker: unexpected frame tag %d mid-invoke", tag)
		}
	}
}

// Terminate asks the child to shut down (best effort) and waits for it to
// exit, mirroring "broken-pipe-on-Terminate is already dead" (spec §4.7).
func (s *Supervisor) Terminate(timeout time.Duration) {
	if s.state == Terminated {
		return
	}
	_ = WriteFrame(s.in, tagTerminate, TerminateMsg{})
	select {
	case <-s.exit:
	case <-time.After(timeout):
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		<-s.exit
	}
	s.state = Terminated
}

// Restart kills the current child (if any), spawns a fresh one, and
// re-initializes it — the fault-recovery path (spec §4.7): the caller is
// expected to report the input that triggered the restart as Crash.
func (s *Supervisor) Restart() error {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		<-s.exit
	}
	s.state = Terminated
	if err := s.Spawn(); err != nil {
		return err
	}
	return s.Init()
}

func (s *Supervisor) State() State { return s.state }
