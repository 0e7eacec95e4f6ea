// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package log provides the small leveled-logging primitive used throughout
// railcar. It never logs to a package global: every component takes a Logf
// closure so that embedding programs (and tests) can redirect output
// without touching process-wide state.
package log

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Logf is the shape every railcar component accepts for diagnostic output.
// level: 0 is always printed, higher numbers are progressively more
// verbose.
type Logf func(level int, msg string, args ...interface{})

var verbosity atomic.Int32

// SetVerbosity sets the global verbosity threshold used by V and the
// default logger returned by Default.
func SetVerbosity(v int) {
	verbosity.Store(int32(v))
}

// V reports whether level is enabled at the current global verbosity,
// gating expensive log construction behind a cheap check.
func V(level int) bool {
	return int32(level) <= verbosity.Load()
}

// Default returns a Logf that writes timestamped lines to stderr, filtering
// by the global verbosity level. It exists for standalone binaries and
// tests that don't otherwise wire a logger; the library packages never
// call it themselves.
func Default() Logf {
	return func(level int, msg string, args ...interface{}) {
		if !V(level) {
			return
		}
		ts := time.Now().Format("2006/01/02 15:04:05")
		fmt.Fprintf(os.Stderr, "%s %s\n", ts, fmt.Sprintf(msg, args...))
	}
}

// Discard silences all output; useful where a component requires a Logf
// but the caller doesn't care about diagnostics.
func Discard(int, string, ...interface{}) {}
