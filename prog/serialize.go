// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/google/railcar/pkg/schema"
)

// On-disk testcases are MessagePack-serialized, self-describing (named
// fields) encodings of one input (spec §6): "ApiSeq/Graph/ParametricGraph
// are self-describing". Each wire struct below carries the in-memory
// type's fields, minus bookkeeping (nextID, and a Graph's maxDepth) that
// is recomputed on decode rather than carried on the wire.

type apiSeqWire struct {
	Calls []Call `msgpack:"calls"`
	Fuzz  []byte `msgpack:"fuzz"`
}

// EncodeApiSeq serializes s as the on-disk corpus/crash testcase format.
func EncodeApiSeq(s *ApiSeq) ([]byte, error) {
	w := apiSeqWire{Calls: s.Calls, Fuzz: s.Fuzz}
	b, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("prog: encode ApiSeq: %w", err)
	}
	return b, nil
}

// DecodeApiSeq reverses EncodeApiSeq; nextID is recomputed from the
// highest call id present rather than carried on the wire.
func DecodeApiSeq(data []byte) (*ApiSeq, error) {
	var w apiSeqWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("prog: decode ApiSeq: %w", err)
	}
	s := &ApiSeq{Calls: w.Calls, Fuzz: w.Fuzz}
	for _, c := range s.Calls {
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
	}
	return s, nil
}

type graphWire struct {
	Nodes  []*GNode `msgpack:"nodes"`
	Order  []int    `msgpack:"order"`
	RootID int      `msgpack:"root_id"`
}

// EncodeGraph serializes g as the on-disk corpus/crash testcase format.
func EncodeGraph(g *Graph) ([]byte, error) {
	w := graphWire{Order: g.order, RootID: g.RootID}
	for _, id := range g.order {
		w.Nodes = append(w.Nodes, g.nodes[id])
	}
	b, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("prog: encode Graph: %w", err)
	}
	return b, nil
}

// DecodeGraph reverses EncodeGraph; nextID and maxDepth are recomputed
// from the decoded nodes rather than carried on the wire.
func DecodeGraph(data []byte) (*Graph, error) {
	var w graphWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("prog: decode Graph: %w", err)
	}
	g := newGraph()
	g.RootID = w.RootID
	for _, n := range w.Nodes {
		g.addNode(n)
	}
	g.order = w.Order
	for _, id := range w.Order {
		if id >= g.nextID {
			g.nextID = id + 1
		}
	}
	return g, nil
}

type parametricGraphWire struct {
	Bytes []byte `msgpack:"bytes"`
}

// EncodeParametricGraph serializes only the backing byte blob: the
// schema snapshot is supplied out-of-band by the fuzzing loop (the same
// schema every input in a run is generated against), matching how the
// worker's Init message already carries the schema once per child rather
// than once per testcase (spec §6).
func EncodeParametricGraph(pg *ParametricGraph) ([]byte, error) {
	w := parametricGraphWire{Bytes: pg.Bytes}
	b, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("prog: encode ParametricGraph: %w", err)
	}
	return b, nil
}

// DecodeParametricGraph reverses EncodeParametricGraph, binding the
// result to sc.
func DecodeParametricGraph(data []byte, sc *schema.Schema) (*ParametricGraph, error) {
	var w parametricGraphWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("prog: decode ParametricGraph: %w", err)
	}
	return &ParametricGraph{Bytes: w.Bytes, Schema: sc}, nil
}
