// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package rand

// Distribution is an ordered map K -> probability (spec §4.1). Ordering
// matters: Sample walks keys in the order they were inserted so that two
// runs over an identical Distribution make identical choices for identical
// draws.
type Distribution[K comparable] struct {
	keys    []K
	weights []float64
	index   map[K]int
}

// NewDistribution builds an empty distribution.
func NewDistribution[K comparable]() *Distribution[K] {
	return &Distribution[K]{index: map[K]int{}}
}

// Set assigns (or overwrites) the weight for key, appending it to the
// iteration order on first use.
func (d *Distribution[K]) Set(key K, weight float64) {
	if i, ok := d.index[key]; ok {
		d.weights[i] = weight
		return
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, key)
	d.weights = append(d.weights, weight)
}

// Get returns the weight for key (0 if absent).
func (d *Distribution[K]) Get(key K) float64 {
	if i, ok := d.index[key]; ok {
		return d.weights[i]
	}
	return 0
}

// Keys returns the distribution's keys in insertion order.
func (d *Distribution[K]) Keys() []K {
	return d.keys
}

// Len reports the number of entries.
func (d *Distribution[K]) Len() int {
	return len(d.keys)
}

// Sum returns the sum of all weights.
func (d *Distribution[K]) Sum() float64 {
	var s float64
	for _, w := range d.weights {
		s += w
	}
	return s
}

// Normalize rescales all weights to sum to 1. A no-op on an empty or
// all-zero distribution.
func (d *Distribution[K]) Normalize() {
	sum := d.Sum()
	if sum <= 0 {
		return
	}
	for i := range d.weights {
		d.weights[i] /= sum
	}
}

// Sample draws one key according to the (normalized) weights (spec §4.1):
// requires at least one entry; with exactly one entry it always returns
// that key; otherwise it draws p in [0,1) and walks keys in insertion
// order accumulating probability, returning the first key whose running
// total exceeds p.
func (d *Distribution[K]) Sample(r Source) K {
	if len(d.keys) == 0 {
		panic("rand: Sample called on an empty distribution")
	}
	if len(d.keys) == 1 {
		return d.keys[0]
	}
	sum := d.Sum()
	if sum <= 0 {
		// Degenerate all-zero distribution: fall back to uniform so
		// callers always get a well-defined key rather than a panic.
		return d.keys[Below(r, len(d.keys))]
	}
	p := r.NextFloat()
	var running float64
	for i, w := range d.weights {
		running += w / sum
		if running > p {
			return d.keys[i]
		}
	}
	return d.keys[len(d.keys)-1]
}

// Redistribute produces a random valid probability vector over the same
// keys as d (stick-breaking, spec §4.1): for each of the first N-1 keys in
// insertion order, assigns next_float() * remaining; the last key receives
// whatever remains. The result always sums to exactly 1.0.
func Redistribute[K comparable](r Source, d *Distribution[K]) *Distribution[K] {
	out := NewDistribution[K]()
	n := len(d.keys)
	if n == 0 {
		return out
	}
	remaining := 1.0
	for i, k := range d.keys {
		if i == n-1 {
			out.Set(k, remaining)
			break
		}
		share := r.NextFloat() * remaining
		remaining -= share
		out.Set(k, share)
	}
	return out
}

// Clone returns a deep copy of d.
func (d *Distribution[K]) Clone() *Distribution[K] {
	out := &Distribution[K]{
		keys:    append([]K(nil), d.keys...),
		weights: append([]float64(nil), d.weights...),
		index:   make(map[K]int, len(d.index)),
	}
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}
