// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"github.com/google/railcar/pkg/havoc"
	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

// ParametricGraph is a byte blob plus a schema snapshot (C5): the harness
// materializes the actual Graph deterministically from the bytes only at
// execution time, via CreateFromBytes, and discards the materialization
// afterward. Mutating a ParametricGraph is pure byte-level havoc; the
// graph it would materialize changes as a side effect.
type ParametricGraph struct {
	Bytes  []byte
	Schema *schema.Schema
}

// NewParametricGraph wraps an initial byte seed over sc.
func NewParametricGraph(seed []byte, sc *schema.Schema) *ParametricGraph {
	return &ParametricGraph{Bytes: append([]byte(nil), seed...), Schema: sc}
}

// CreateFromBytes deterministically builds the Graph the ParametricGraph
// currently encodes: a BytesRand over Bytes drives Seed and Complete
// exactly as a live *rand.Rand would, so identical bytes always
// materialize an identical graph.
func CreateFromBytes(bytes []byte, sc *schema.Schema) (*Graph, error) {
	br := rand.NewBytesRand(bytes)
	g, err := Seed(br, sc)
	if err != nil {
		return nil, err
	}
	if err := g.Complete(br, sc); err != nil {
		return nil, err
	}
	g.Reroot()
	g.Cleanup()
	return g, nil
}

// Materialize is a convenience wrapper building the Graph this
// ParametricGraph currently encodes.
func (pg *ParametricGraph) Materialize() (*Graph, error) {
	return CreateFromBytes(pg.Bytes, pg.Schema)
}

// HavocParametricGraph applies standard byte-level mutations to the
// backing bytes; the materialized graph changes as a side effect the next
// time CreateFromBytes is called.
func HavocParametricGraph(r rand.Source, pg *ParametricGraph) MutationResult {
	pg.Bytes = havoc.Mutate(r, pg.Bytes)
	return Mutated
}

// Clone deep-copies pg (the Schema pointer is shared: schemas are
// immutable snapshots once attached to a ParametricGraph).
func (pg *ParametricGraph) Clone() *ParametricGraph {
	return &ParametricGraph{Bytes: append([]byte(nil), pg.Bytes...), Schema: pg.Schema}
}
