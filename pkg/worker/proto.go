// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package worker implements the parent-side half of the child-process
// wire protocol and supervisor state machine (spec §4.7, C7): framed
// MessagePack messages over the child's stdin/stdout pipes, and a
// restart-on-fault supervisor built on the standard
// exec.Command-plus-goroutine process-lifecycle idiom.
package worker

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Mode selects how Invoke's payload bytes are interpreted by the worker.
type Mode string

const (
	ModeBytes    Mode = "bytes"
	ModeSequence Mode = "sequence"
)

// ExitCode is the byte InvokeOk carries back (spec §6): classified by the
// supervisor into an ExitKind.
type ExitCode byte

const (
	ExitValid        ExitCode = 0
	ExitExpectedError ExitCode = 1
	ExitCrash        ExitCode = 2
	ExitPanic        ExitCode = 3
)

// ExitKind is how the fuzzing loop classifies the outcome of one Invoke
// round-trip, folding in the fault-recovery case the exit code alone
// can't represent (a broken pipe mid-round-trip).
type ExitKind int

const (
	KindOk ExitKind = iota
	KindInvalid
	KindCrash
	KindPanic
)

func (c ExitCode) Classify() ExitKind {
	switch c {
	case ExitValid:
		return KindOk
	case ExitExpectedError:
		return KindInvalid
	case ExitCrash:
		return KindCrash
	case ExitPanic:
		return KindPanic
	default:
		return KindCrash
	}
}

// InitMsg is the first frame the supervisor sends a freshly spawned child.
type InitMsg struct {
	Mode        Mode   `msgpack:"mode"`
	Entrypoint  string `msgpack:"entrypoint"`
	SchemaFile  string `msgpack:"schema_file,omitempty"`
	ShmemDesc   int    `msgpack:"shmem_desc,omitempty"`
	Replay      bool   `msgpack:"replay,omitempty"`
	ConfigFile  string `msgpack:"config_file,omitempty"`
}

// InitOkMsg is the child's Init acknowledgment. SchemaJSON carries the
// worker-inferred schema when the parent didn't pin one via SchemaFile.
type InitOkMsg struct {
	SchemaJSON []byte `msgpack:"schema,omitempty"`
}

// InvokeMsg asks the worker to execute one input.
type InvokeMsg struct {
	Bytes []byte `msgpack:"bytes"`
}

// InvokeOkMsg is the worker's Invoke response.
type InvokeOkMsg struct {
	Code ExitCode `msgpack:"code"`
}

// LogMsg is an informational frame the worker may interleave at any
// point; the supervisor logs it and keeps reading.
type LogMsg struct {
	Msg string `msgpack:"msg"`
}

// TerminateMsg asks the worker to shut down; sent best-effort.
type TerminateMsg struct{}

// frameTag distinguishes which of the message types above a frame
// carries, since MessagePack frames on the wire are otherwise untagged.
type frameTag byte

const (
	tagInit frameTag = iota
	tagInitOk
	tagInvoke
	tagInvokeOk
	tagLog
	tagTerminate
)

// WriteFrame length-delimited-encodes tag+payload as one MessagePack
// frame: a big-endian uint32 byte count followed by that many bytes.
func WriteFrame(w io.Writer, tag frameTag, payload interface{}) error {
	body, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("worker: marshal frame: %w", err)
	}
	var hdr [5]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(body)+1))
	hdr[4] = byte(tag)
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("worker: write frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("worker: write frame body: %w", err)
	}
	return nil
}

// ReadFrame reads one length-delimited frame and returns its tag and raw
// MessagePack payload; the caller unmarshals into the type the tag
// implies.
func ReadFrame(r io.Reader) (frameTag, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return 0, nil, fmt.Errorf("worker: empty frame")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, nil, err
	}
	return frameTag(buf[0]), buf[1:], nil
}
