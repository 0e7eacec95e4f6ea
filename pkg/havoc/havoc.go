// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package havoc implements the byte-level mutation bag (spec §4.11, C11)
// shared by every byte-seeded surface in the input engine: ApiSeq's
// `fuzz` trailer, a Graph node's `context` buffer, and ParametricGraph's
// backing bytes. There is no general-purpose byte-mutation library in the
// dependency surface this module draws on, so the operators below are
// hand-rolled from the same small set of primitives (bit flip, byte flip,
// arithmetic nudge, chunk insert/remove/duplicate) that any coverage-guided
// byte fuzzer implements; see DESIGN.md for why this stays on the standard
// library rather than an imported mutator.
package havoc

import (
	"github.com/google/railcar/pkg/rand"
)

// MaxOpsLog2 bounds how many operators a single Mutate call applies:
// between 1 and 2^MaxOpsLog2, per the Context mutation's own bound (spec
// §4.4).
const MaxOpsLog2 = 4

type op func(r rand.Source, buf []byte) []byte

var ops = []op{
	flipBit,
	flipByte,
	arithByte,
	insertByte,
	removeByte,
	duplicateChunk,
	removeChunk,
}

// Mutate applies between 1 and 2^MaxOpsLog2 randomly chosen byte-level
// operators to a copy of buf and returns the result. An empty buf is
// grown by insertByte/duplicateChunk as needed; Mutate never returns a
// result shorter than what removeChunk alone could reach on a tiny input.
func Mutate(r rand.Source, buf []byte) []byte {
	n := rand.Between(r, 1, 1<<MaxOpsLog2)
	out := append([]byte(nil), buf...)
	for i := 0; i < n; i++ {
		f, _ := rand.Choose(r, ops)
		out = f(r, out)
	}
	return out
}

// Extend grows buf to at least n bytes by appending freshly sampled bytes,
// used when a mutation needs more backing bytes than it currently has
// (e.g. Context extending a node's constant-sampling buffer).
func Extend(r rand.Source, buf []byte, n int) []byte {
	if len(buf) >= n {
		return buf
	}
	out := append([]byte(nil), buf...)
	for len(out) < n {
		out = append(out, byte(rand.Below(r, 256)))
	}
	return out
}

func flipBit(r rand.Source, buf []byte) []byte {
	if len(buf) == 0 {
		return insertByte(r, buf)
	}
	i := rand.Below(r, len(buf))
	bit := uint(rand.Below(r, 8))
	buf[i] ^= 1 << bit
	return buf
}

func flipByte(r rand.Source, buf []byte) []byte {
	if len(buf) == 0 {
		return insertByte(r, buf)
	}
	i := rand.Below(r, len(buf))
	buf[i] = byte(rand.Below(r, 256))
	return buf
}

func arithByte(r rand.Source, buf []byte) []byte {
	if len(buf) == 0 {
		return insertByte(r, buf)
	}
	i := rand.Below(r, len(buf))
	delta := byte(rand.Between(r, 1, 35))
	if rand.Boolean(r) {
		buf[i] += delta
	} else {
		buf[i] -= delta
	}
	return buf
}

func insertByte(r rand.Source, buf []byte) []byte {
	i := rand.Below(r, len(buf)+1)
	b := byte(rand.Below(r, 256))
	out := make([]byte, 0, len(buf)+1)
	out = append(out, buf[:i]...)
	out = append(out, b)
	out = append(out, buf[i:]...)
	return out
}

func removeByte(r rand.Source, buf []byte) []byte {
	if len(buf) == 0 {
		return buf
	}
	i := rand.Below(r, len(buf))
	out := make([]byte, 0, len(buf)-1)
	out = append(out, buf[:i]...)
	out = append(out, buf[i+1:]...)
	return out
}

func duplicateChunk(r rand.Source, buf []byte) []byte {
	if len(buf) == 0 {
		return insertByte(r, buf)
	}
	start := rand.Below(r, len(buf))
	length := rand.Between(r, 1, len(buf)-start)
	at := rand.Below(r, len(buf)+1)
	chunk := append([]byte(nil), buf[start:start+length]...)
	out := make([]byte, 0, len(buf)+length)
	out = append(out, buf[:at]...)
	out = append(out, chunk...)
	out = append(out, buf[at:]...)
	return out
}

func removeChunk(r rand.Source, buf []byte) []byte {
	if len(buf) < 2 {
		return removeByte(r, buf)
	}
	start := rand.Below(r, len(buf))
	length := rand.Between(r, 1, len(buf)-start)
	out := make([]byte, 0, len(buf)-length)
	out = append(out, buf[:start]...)
	out = append(out, buf[start+length:]...)
	return out
}
