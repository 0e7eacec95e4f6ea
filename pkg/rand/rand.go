// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package rand implements the deterministic PRNG capability the rest of
// railcar is built on (spec §4.1, C1): a thin wrapper over math/rand.Rand
// that adds the inclusive/coinflip/choose helpers the input engine needs,
// plus BytesRand, the byte-seeded PRNG that makes every structure built
// from it a pure function of a byte buffer.
package rand

import (
	"encoding/binary"
	mathrand "math/rand"
)

// Source is the PRNG capability consumed by every other component.
// *Rand (built with Wrap) and *BytesRand both satisfy it; a bare
// *mathrand.Rand does not.
type Source interface {
	NextU64() uint64
	NextFloat() float64
}

// New returns a math/rand.Rand seeded deterministically (pass it to Wrap
// to get a Source), matching the
// teacher's own `rand.New(rand.NewSource(seed))` idiom (pkg/fuzzer/fuzzer.go).
func New(seed int64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(seed))
}

// Rand adapts *mathrand.Rand to the Source interface and adds the
// higher-level sampling primitives from spec §4.1.
type Rand struct {
	*mathrand.Rand
}

// Wrap adapts an existing *mathrand.Rand.
func Wrap(r *mathrand.Rand) *Rand { return &Rand{r} }

func (r *Rand) NextU64() uint64 {
	return r.Uint64()
}

func (r *Rand) NextFloat() float64 {
	return r.Float64()
}

// Between returns a value in [lo, hi], inclusive on both ends.
func Between(r Source, lo, hi int) int {
	if hi < lo {
		panic("rand: Between called with hi < lo")
	}
	return lo + Below(r, hi-lo+1)
}

// Below returns a value in [0, n).
func Below(r Source, n int) int {
	if n <= 0 {
		panic("rand: Below called with n <= 0")
	}
	// next_u64 mod n is adequate here: n is always small (sequence
	// lengths, endpoint counts) so modulo bias is negligible, and the
	// teacher's own prog package uses the equivalent r.Intn throughout.
	return int(r.NextU64() % uint64(n))
}

// Coinflip returns true with probability p (p in [0,1]).
func Coinflip(r Source, p float64) bool {
	return r.NextFloat() < p
}

// Choose picks a uniformly random element of items, or the zero value and
// false if items is empty.
func Choose[T any](r Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[Below(r, len(items))], true
}

// BytesRand wraps a byte slice so that any structure built from it is a
// deterministic function of the buffer (spec §4.1, §4.5, §9): the first 8
// bytes, little-endian, seed a backing math/rand PRNG; each subsequent call
// to NextU64 consumes the next 8 bytes of the slice (little-endian) until
// the buffer is exhausted, after which it falls back to the backing PRNG.
type BytesRand struct {
	buf     []byte
	pos     int
	backing *mathrand.Rand
}

// NewBytesRand constructs a BytesRand over buf. An empty or short buf is
// fine: the backing PRNG is seeded with whatever leading bytes are
// available (zero-padded), and NextU64 falls back to the backing PRNG
// immediately.
func NewBytesRand(buf []byte) *BytesRand {
	var seedBuf [8]byte
	copy(seedBuf[:], buf)
	seed := int64(binary.LittleEndian.Uint64(seedBuf[:]))
	pos := 8
	if pos > len(buf) {
		pos = len(buf)
	}
	return &BytesRand{
		buf:     buf,
		pos:     pos,
		backing: mathrand.New(mathrand.NewSource(seed)),
	}
}

func (b *BytesRand) NextU64() uint64 {
	if b.pos+8 <= len(b.buf) {
		v := binary.LittleEndian.Uint64(b.buf[b.pos : b.pos+8])
		b.pos += 8
		return v
	}
	return b.backing.Uint64()
}

func (b *BytesRand) NextFloat() float64 {
	// 53 bits of mantissa, matching math/rand.Float64's construction.
	return float64(b.NextU64()>>11) / (1 << 53)
}

// Exhausted reports whether the buffer has been fully consumed and NextU64
// calls are now served exclusively by the backing PRNG.
func (b *BytesRand) Exhausted() bool {
	return b.pos >= len(b.buf)
}

// Number samples a primitive "number" constant: an integer in [0, 1000).
func Number(r Source) float64 {
	return float64(int(r.NextFloat() * 1000))
}

const printableLo, printableHi = 0x20, 0x7e

// String samples a primitive "string" constant: printable ASCII, length
// in [0, 11].
func String(r Source) string {
	n := Below(r, 12)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(Between(r, printableLo, printableHi))
	}
	return string(buf)
}

// Boolean samples a fair coin.
func Boolean(r Source) bool {
	return Coinflip(r, 0.5)
}

// Size samples a collection size in [0, 11].
func Size(r Source) int {
	return Below(r, 12)
}

// ContextByteSeq fills a buffer of length n (default 128 when n <= 0) with
// repeated little-endian NextU64 output, used to mint fresh Graph node
// `context` byte buffers (spec §4.4).
func ContextByteSeq(r Source, n int) []byte {
	if n <= 0 {
		n = 128
	}
	buf := make([]byte, n)
	for i := 0; i < n; i += 8 {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], r.NextU64())
		copy(buf[i:], tmp[:])
	}
	return buf
}
