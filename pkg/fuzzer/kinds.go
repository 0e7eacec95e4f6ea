// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package fuzzer

import (
	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
	"github.com/google/railcar/prog"
)

// Operator applies one mutation step to self (an *prog.ApiSeq,
// *prog.Graph or *prog.ParametricGraph, matching whichever Kind built the
// Config). pickDonor returns another corpus entry of the same kind, used
// by the crossover operators; it reports false when the corpus has fewer
// than two entries.
type Operator func(r rand.Source, sc *schema.Schema, self interface{}, pickDonor func() (interface{}, bool)) prog.MutationResult

// countApiNodes reports how many of g's nodes are API calls, the Graph
// analogue of an ApiSeq's Calls length (used for ApiProgressFeedback's
// total_calls).
func countApiNodes(g *prog.Graph) int {
	count := 0
	for _, id := range g.Nodes() {
		n, ok := g.Node(id)
		if ok && n.Kind == prog.ApiNode {
			count++
		}
	}
	return count
}

// initialParametricSeedSize is the byte-buffer length a freshly generated
// ParametricGraph starts with; havoc grows or shrinks it from there.
const initialParametricSeedSize = 64

// ApplyApiSeqKind configures cfg to generate, mutate, clone and encode
// *prog.ApiSeq inputs (spec C3).
func ApplyApiSeqKind(cfg *Config) {
	cfg.Generate = func(r rand.Source, sc *schema.Schema) (interface{}, error) {
		return prog.Create(r, sc, nil)
	}
	cfg.Operators = []Operator{
		func(r rand.Source, sc *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
			return prog.SpliceSeq(r, sc, self.(*prog.ApiSeq))
		},
		func(r rand.Source, sc *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
			return prog.ExtendSeq(r, sc, self.(*prog.ApiSeq))
		},
		func(r rand.Source, _ *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
			return prog.RemoveSuffixSeq(r, self.(*prog.ApiSeq))
		},
		func(r rand.Source, sc *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
			return prog.RemovePrefixSeq(r, sc, self.(*prog.ApiSeq))
		},
		func(r rand.Source, sc *schema.Schema, self interface{}, pickDonor func() (interface{}, bool)) prog.MutationResult {
			donor, ok := pickDonor()
			if !ok {
				return prog.Skipped
			}
			other, ok := donor.(*prog.ApiSeq)
			if !ok {
				return prog.Skipped
			}
			return prog.CrossoverSeq(r, sc, self.(*prog.ApiSeq), other)
		},
		func(r rand.Source, _ *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
			return prog.HavocOnFuzz(r, self.(*prog.ApiSeq))
		},
	}
	cfg.Clone = func(v interface{}) interface{} {
		return v.(*prog.ApiSeq).Clone()
	}
	cfg.Encode = func(v interface{}) ([]byte, error) {
		return prog.EncodeApiSeq(v.(*prog.ApiSeq))
	}
	cfg.Decode = func(data []byte) (interface{}, error) {
		return prog.DecodeApiSeq(data)
	}
	cfg.TotalCalls = func(v interface{}) int {
		return len(v.(*prog.ApiSeq).Calls)
	}
}

// graphOp wraps a Graph mutator with the (r, sc, g) signature into an
// Operator.
func graphOp(f func(r rand.Source, sc *schema.Schema, g *prog.Graph) prog.MutationResult) Operator {
	return func(r rand.Source, sc *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
		return f(r, sc, self.(*prog.Graph))
	}
}

// graphOpNoSchema wraps a Graph mutator that doesn't take a schema
// argument (Context, Priority).
func graphOpNoSchema(f func(r rand.Source, g *prog.Graph) prog.MutationResult) Operator {
	return func(r rand.Source, _ *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
		return f(r, self.(*prog.Graph))
	}
}

// ApplyGraphKind configures cfg to generate, mutate, clone and encode
// *prog.Graph inputs (spec C4), including the full Simple/Complex/
// schema-variation operator tables (spec §4.4).
func ApplyGraphKind(cfg *Config) {
	cfg.Generate = func(r rand.Source, sc *schema.Schema) (interface{}, error) {
		g, err := prog.Seed(r, sc)
		if err != nil {
			return nil, err
		}
		if err := g.Complete(r, sc); err != nil {
			return nil, err
		}
		g.Reroot()
		g.Cleanup()
		return g, nil
	}
	cfg.Operators = []Operator{
		graphOp(prog.Truncate),
		graphOp(prog.Extend),
		graphOp(prog.SpliceIn),
		graphOp(prog.SpliceOut),
		graphOp(prog.Swap),
		graphOp(prog.TruncateDestructor),
		graphOp(prog.ExtendDestructor),
		graphOp(prog.TruncateConstructor),
		graphOp(prog.ExtendConstructor),
		graphOpNoSchema(prog.Context),
		graphOpNoSchema(prog.Priority),
		graphOp(prog.SchemaVariationArgc),
		graphOp(prog.SchemaVariationWeights),
		graphOp(prog.SchemaVariationMakeNullable),
		func(r rand.Source, sc *schema.Schema, self interface{}, pickDonor func() (interface{}, bool)) prog.MutationResult {
			donor, ok := pickDonor()
			if !ok {
				return prog.Skipped
			}
			other, ok := donor.(*prog.Graph)
			if !ok {
				return prog.Skipped
			}
			return prog.CrossoverGraph(r, sc, self.(*prog.Graph), other)
		},
	}
	cfg.Clone = func(v interface{}) interface{} {
		return v.(*prog.Graph).Clone()
	}
	cfg.Encode = func(v interface{}) ([]byte, error) {
		return prog.EncodeGraph(v.(*prog.Graph))
	}
	cfg.Decode = func(data []byte) (interface{}, error) {
		return prog.DecodeGraph(data)
	}
	cfg.TotalCalls = func(v interface{}) int {
		return countApiNodes(v.(*prog.Graph))
	}
}

// ApplyParametricGraphKind configures cfg to generate, mutate, clone and
// encode *prog.ParametricGraph inputs (spec C5): the only mutation is
// byte-level havoc over the backing buffer, and encoding materializes the
// Graph the bytes currently describe before handing it to the worker
// (spec §4.5: "the harness... builds the graph deterministically...
// serializes it to the worker, and discards it").
func ApplyParametricGraphKind(cfg *Config) {
	cfg.Generate = func(r rand.Source, sc *schema.Schema) (interface{}, error) {
		seed := rand.ContextByteSeq(r, initialParametricSeedSize)
		return prog.NewParametricGraph(seed, sc), nil
	}
	cfg.Operators = []Operator{
		func(r rand.Source, _ *schema.Schema, self interface{}, _ func() (interface{}, bool)) prog.MutationResult {
			return prog.HavocParametricGraph(r, self.(*prog.ParametricGraph))
		},
	}
	cfg.Clone = func(v interface{}) interface{} {
		return v.(*prog.ParametricGraph).Clone()
	}
	cfg.Encode = func(v interface{}) ([]byte, error) {
		pg := v.(*prog.ParametricGraph)
		g, err := pg.Materialize()
		if err != nil {
			return nil, err
		}
		return prog.EncodeGraph(g)
	}
	cfg.TotalCalls = func(v interface{}) int {
		pg := v.(*prog.ParametricGraph)
		g, err := pg.Materialize()
		if err != nil {
			return 0
		}
		return countApiNodes(g)
	}
}
