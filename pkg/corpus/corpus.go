// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package corpus implements the weighted-by-score scheduler (spec §4.10,
// C10): a flat, mutex-guarded list of entries plus a weighted random pick,
// rather than per-signal bucketing — railcar's score is a single
// InputValidityMetadata-derived multiplier, not a per-PC frequency table,
// so bucketing machinery has no equivalent need here.
package corpus

import (
	"sync"

	"github.com/google/railcar/pkg/feedback"
	"github.com/google/railcar/pkg/rand"
)

// Entry is one corpus testcase: an opaque payload (an ApiSeq, Graph, or
// ParametricGraph, serialized form left to the caller), its baseline
// score, and the validity metadata StdFeedback attached on append.
type Entry struct {
	ID         int
	Data       interface{}
	BaseWeight int64
	Validity   feedback.InputValidityMetadata
}

// weight returns the entry's scheduling weight: the baseline weight,
// doubled iff the entry is marked valid (spec §4.10).
func (e *Entry) weight() int64 {
	if e.Validity.IsValid {
		return e.BaseWeight * 2
	}
	return e.BaseWeight
}

// Corpus is a thread-safe, weighted collection of testcases.
type Corpus struct {
	mu      sync.Mutex
	entries []*Entry
	nextID  int
}

// New builds an empty corpus.
func New() *Corpus {
	return &Corpus{}
}

// Add appends a new entry and returns its id.
func (c *Corpus) Add(data interface{}, baseWeight int64, validity feedback.InputValidityMetadata) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.entries = append(c.entries, &Entry{ID: id, Data: data, BaseWeight: baseWeight, Validity: validity})
	return id
}

// Count reports the number of entries.
func (c *Corpus) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the entry with the given id.
func (c *Corpus) Get(id int) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// ChoosePlain returns a uniformly random entry, ignoring weight — used by
// mutation operators (e.g. Crossover) that want "any other corpus entry"
// rather than the scheduler's biased pick.
func (c *Corpus) ChoosePlain(r rand.Source) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return nil, false
	}
	return c.entries[rand.Below(r, len(c.entries))], true
}

// ChooseWeighted picks an entry with probability proportional to its
// weight, biasing valid inputs 2x over invalid ones of the same baseline
// (spec §4.10).
func (c *Corpus) ChooseWeighted(r rand.Source) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) == 0 {
		return nil, false
	}
	var total int64
	for _, e := range c.entries {
		total += e.weight()
	}
	if total <= 0 {
		return c.entries[rand.Below(r, len(c.entries))], true
	}
	target := int64(r.NextFloat() * float64(total))
	var running int64
	for _, e := range c.entries {
		running += e.weight()
		if running > target {
			return e, true
		}
	}
	return c.entries[len(c.entries)-1], true
}

// Entries returns a shallow copy of the entry list, in insertion order.
func (c *Corpus) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}
