// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

// The three schema-variation mutations (spec §4.4) operate one level up
// from a single input: rather than editing a Graph's nodes, they edit the
// SignatureGuess/TypeGuess data the schema exposes to every future
// generate/complete call. Railcar's Schema is a shared object handed to
// every corpus entry rather than a private per-input copy, so these
// mutators pick one endpoint out of sc and edit it in place. They return
// Mutated although the Graph itself is left unchanged: the schema edit is
// the side effect, and it reaches every input built from sc afterwards.

// pickSignature returns a random endpoint's SignatureGuess, or false if
// sc has none.
func pickSignature(r rand.Source, sc *schema.Schema) (*schema.SignatureGuess, bool) {
	name, ok := rand.Choose(r, sc.Iterate())
	if !ok {
		return nil, false
	}
	sg, ok := sc.Lookup(name)
	return sg, ok
}

// pickTypeGuess returns a random TG reachable from sg: its return type or
// one of its argument ports.
func pickTypeGuess(r rand.Source, sg *schema.SignatureGuess) *schema.TypeGuess {
	n := len(sg.Args) + 1 // +1 for ReturnType
	switch i := rand.Below(r, n); {
	case i == len(sg.Args):
		return sg.ReturnType
	default:
		return sg.Args[i]
	}
}

// SchemaVariationArgc resizes a random endpoint's argument list (spec
// §4.4), ignoring g: the effect is entirely on sc, discovered by future
// Complete calls against any input built from it.
func SchemaVariationArgc(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	sg, ok := pickSignature(r, sc)
	if !ok {
		return Skipped
	}
	schema.SchemaVariationArgc(r, sg)
	return Mutated
}

// SchemaVariationWeights redistributes a random endpoint's TG
// kind/class/object-shape/array-element distributions recursively (spec
// §4.4).
func SchemaVariationWeights(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	sg, ok := pickSignature(r, sc)
	if !ok {
		return Skipped
	}
	schema.SchemaVariationWeights(r, pickTypeGuess(r, sg))
	return Mutated
}

// SchemaVariationMakeNullable adds Null and Undefined to a random
// endpoint's TG kind set and redistributes (spec §4.4).
func SchemaVariationMakeNullable(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	sg, ok := pickSignature(r, sc)
	if !ok {
		return Skipped
	}
	schema.SchemaVariationMakeNullable(r, pickTypeGuess(r, sg))
	return Mutated
}
