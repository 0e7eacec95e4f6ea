// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"github.com/google/railcar/pkg/havoc"
	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

// runCompletion recompletes g, reporting Undo on HugeGraph so the caller
// can restore its pre-mutation clone (spec §4.4's reversible-mutation
// contract).
func runCompletion(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	if err := g.Complete(r, sc); err != nil {
		return Undo
	}
	g.Reroot()
	g.Cleanup()
	return Mutated
}

// apiNodeIDs returns every Api node id in g, in creation order.
func apiNodeIDs(g *Graph) []int {
	var out []int
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == ApiNode {
			out = append(out, id)
		}
	}
	return out
}

// Truncate removes a random outgoing edge from a randomly chosen node and
// recompletes.
func Truncate(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	var withOutgoing []int
	for _, id := range g.order {
		if len(g.nodes[id].Outgoing) > 0 {
			withOutgoing = append(withOutgoing, id)
		}
	}
	if len(withOutgoing) == 0 {
		return Skipped
	}
	srcID, _ := rand.Choose(r, withOutgoing)
	src := g.nodes[srcID]
	idx := rand.Below(r, len(src.Outgoing))
	e := src.Outgoing[idx]
	g.Disconnect(srcID, e.ConsumerID)
	return runCompletion(r, sc, g)
}

// Extend attaches a new Api node that consumes the chosen node's value.
func Extend(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	srcID, _ := rand.Choose(r, g.order)
	src := g.nodes[srcID]
	producedType := src.ReturnType
	if src.Kind == ConstantNode {
		producedType = src.ConstantType
	}
	var args []*schema.Type
	args = append(args, producedType)
	sig, _, ok := sc.Concretize(r, schema.Query{Args: args}, false)
	if !ok {
		return Skipped
	}
	// The new node consumes src's value, so it sits shallower than src:
	// producers are the deeper nodes here (materializeApi mints them at
	// consumer.Depth+1, and Connect asserts src.Depth > dst.Depth).
	consumerDepth := src.Depth - 1
	consumerID := g.materializeApi(r, sc, sig, consumerDepth)
	consumer := g.nodes[consumerID]
	port := -1
	for i, t := range sig.Args {
		if t.Equal(producedType) {
			port = i
			break
		}
	}
	if port < 0 {
		return Skipped
	}
	_ = consumer
	g.Connect(srcID, consumerID, port)
	return runCompletion(r, sc, g)
}

// SpliceIn inserts a new Api node on an existing edge, consuming src's
// output and producing dst's input type; its depth is the midpoint.
func SpliceIn(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	type edgeRef struct{ src, dst, port int }
	var edges []edgeRef
	for _, id := range g.order {
		n := g.nodes[id]
		for _, e := range n.Outgoing {
			edges = append(edges, edgeRef{src: id, dst: e.ConsumerID, port: e.Port})
		}
	}
	if len(edges) == 0 {
		return Skipped
	}
	e, _ := rand.Choose(r, edges)
	src := g.nodes[e.src]
	dst := g.nodes[e.dst]
	srcType := src.ReturnType
	if src.Kind == ConstantNode {
		srcType = src.ConstantType
	}
	dstType := dst.Incoming[e.port].RequiredType
	sig, _, ok := sc.Concretize(r, schema.Query{Args: []*schema.Type{srcType}, Ret: dstType}, false)
	if !ok {
		return Skipped
	}
	argPort := -1
	for i, t := range sig.Args {
		if t.Equal(srcType) {
			argPort = i
			break
		}
	}
	if argPort < 0 {
		return Skipped
	}
	// src.Depth > dst.Depth is the edge invariant Connect already enforced,
	// so their fractional midpoint always lands strictly between them.
	mid := (src.Depth + dst.Depth) / 2
	g.Disconnect(e.src, e.dst)
	midID := g.materializeApi(r, sc, sig, mid)
	g.Connect(e.src, midID, argPort)
	g.Connect(midID, e.dst, e.port)
	return runCompletion(r, sc, g)
}

// SpliceOut removes an Api node that has an incoming edge whose source
// shares the node's own return type, rewiring that source directly to the
// node's consumers (a type-preserving shortcut).
func SpliceOut(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	var candidates []struct{ node, producerPort int }
	for _, id := range apiNodeIDs(g) {
		n := g.nodes[id]
		for portIdx, p := range n.Incoming {
			if !p.Filled {
				continue
			}
			prod := g.nodes[p.ProducerID]
			prodType := prod.ReturnType
			if prod.Kind == ConstantNode {
				prodType = prod.ConstantType
			}
			if prodType.Equal(n.ReturnType) {
				candidates = append(candidates, struct{ node, producerPort int }{id, portIdx})
				break
			}
		}
	}
	if len(candidates) == 0 {
		return Skipped
	}
	c, _ := rand.Choose(r, candidates)
	n := g.nodes[c.node]
	producerID := n.Incoming[c.producerPort].ProducerID
	consumers := append([]outEdge(nil), n.Outgoing...)
	for _, e := range consumers {
		g.Disconnect(c.node, e.ConsumerID)
		g.Connect(producerID, e.ConsumerID, e.Port)
	}
	for _, p := range n.Incoming {
		if p.Filled {
			g.Disconnect(p.ProducerID, c.node)
		}
	}
	delete(g.nodes, c.node)
	g.order = removeID(g.order, c.node)
	if g.RootID == c.node {
		g.RootID = producerID
	}
	return runCompletion(r, sc, g)
}

func removeID(ids []int, target int) []int {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// CrossoverGraph bridges the recipient into a donor graph: some recipient
// node (the producer, deeper) is wired into an unfilled port of some donor
// Api node (the consumer, shallower). The donor is offset below that
// producer's depth after the bridge is chosen, so Connect's
// src.Depth > dst.Depth holds for the bridge and for every other donor
// edge alike.
func CrossoverGraph(r rand.Source, sc *schema.Schema, g *Graph, donor *Graph) MutationResult {
	d := donor.Clone()
	d.OffsetIDs(g.nextID)

	type bridge struct {
		srcG          int
		dstD, dstPort int
	}
	var bridges []bridge
	for _, did := range d.order {
		dn := d.nodes[did]
		for port, p := range dn.Incoming {
			if p.Filled {
				continue
			}
			for _, gid := range g.order {
				gn := g.nodes[gid]
				produced := gn.ReturnType
				if gn.Kind == ConstantNode {
					produced = gn.ConstantType
				}
				if produced.Equal(p.RequiredType) {
					bridges = append(bridges, bridge{gid, did, port})
				}
			}
		}
	}
	if len(bridges) == 0 {
		return Skipped
	}
	b, _ := rand.Choose(r, bridges)

	// Normalize the donor's own depth range to start at 0, then shift it so
	// its new max sits one below the chosen producer's depth.
	d.SetMaxDepth(0)
	d.SetMaxDepth(g.nodes[b.srcG].Depth - d.maxDepth - 1)

	for _, id := range d.order {
		g.nodes[id] = d.nodes[id]
		g.order = append(g.order, id)
	}
	if d.nextID > g.nextID {
		g.nextID = d.nextID
	}
	g.Connect(b.srcG, b.dstD, b.dstPort)
	return runCompletion(r, sc, g)
}

// Context applies byte-havoc to an Api node's context buffer and resamples
// every eligible Constant incoming from a BytesRand seeded by the new
// context (spec §4.4's mechanism for coherent constant search).
func Context(r rand.Source, g *Graph) MutationResult {
	var candidates []int
	for _, id := range apiNodeIDs(g) {
		n := g.nodes[id]
		for _, p := range n.Incoming {
			if p.Filled {
				if prod := g.nodes[p.ProducerID]; prod.Kind == ConstantNode {
					candidates = append(candidates, id)
					break
				}
			}
		}
	}
	if len(candidates) == 0 {
		return Skipped
	}
	nodeID, _ := rand.Choose(r, candidates)
	n := g.nodes[nodeID]
	// One havoc.Mutate call applies 1..2^havoc.MaxOpsLog2 operators, the
	// same bound as 2^MaxContextMutationIterationsLog2.
	n.Context = havoc.Mutate(r, n.Context)
	n.Context = havoc.Extend(r, n.Context, DefaultContextSize)

	br := rand.NewBytesRand(n.Context)
	for _, p := range n.Incoming {
		if !p.Filled {
			continue
		}
		prod := g.nodes[p.ProducerID]
		if prod.Kind != ConstantNode {
			continue
		}
		prod.ConstantType = tgForType(prod.ConstantType).Sample(br)
	}
	return Mutated
}

// tgForType builds a trivial single-kind TypeGuess that reproduces t's
// shape, used to re-sample a Constant node's type template from a fresh
// BytesRand while preserving its Object/Array/Class structure.
func tgForType(t *schema.Type) *schema.TypeGuess {
	switch t.Kind {
	case schema.Object:
		var shape []schema.ShapeField
		for _, f := range t.Fields {
			shape = append(shape, schema.ShapeField{Name: f.Name, TG: tgForType(f.Type)})
		}
		return schema.KindOnly(schema.Object, shape)
	case schema.Array:
		return schema.KindOnly(schema.Array, tgForType(t.Elem))
	case schema.Class:
		return schema.KindOnly(schema.Class, []string{t.Cls})
	default:
		return schema.KindOnly(t.Kind)
	}
}

// Swap rewrites a node's endpoint to a different one with compatible
// ports, re-pinning the incoming edges' port permutation.
func Swap(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	ids := apiNodeIDs(g)
	if len(ids) == 0 {
		return Skipped
	}
	nodeID, _ := rand.Choose(r, ids)
	n := g.nodes[nodeID]
	var argTypes []*schema.Type
	for _, p := range n.Incoming {
		argTypes = append(argTypes, p.RequiredType)
	}
	sig, pm, ok := sc.Concretize(r, schema.Query{Args: argTypes, Ret: n.ReturnType}, false)
	if !ok || sig.Endpoint == n.Endpoint {
		return Skipped
	}
	newIncoming := make([]GPort, len(sig.Args))
	for newPort, oldPort := range pm.ArgSource {
		if oldPort < 0 || oldPort >= len(n.Incoming) {
			continue
		}
		newIncoming[newPort] = n.Incoming[oldPort]
	}
	n.Endpoint = sig.Endpoint
	n.Conv = sig.Conv
	n.Receiver = sig.Receiver
	n.Incoming = newIncoming
	n.EvaluationOrder = n.EvaluationOrder[:0]
	for i := range newIncoming {
		n.EvaluationOrder = append(n.EvaluationOrder, i)
	}
	return runCompletion(r, sc, g)
}

// Priority shuffles a node's Outgoing order and EvaluationOrder; requires
// at least 2 entries in either to have any effect.
func Priority(r rand.Source, g *Graph) MutationResult {
	var candidates []int
	for _, id := range g.order {
		n := g.nodes[id]
		if len(n.Outgoing) >= 2 || len(n.EvaluationOrder) >= 2 {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return Skipped
	}
	id, _ := rand.Choose(r, candidates)
	n := g.nodes[id]
	shuffle(r, n.Outgoing)
	shuffleInts(r, n.EvaluationOrder)
	return Mutated
}

func shuffle(r rand.Source, s []outEdge) {
	for i := len(s) - 1; i > 0; i-- {
		j := rand.Below(r, i+1)
		s[i], s[j] = s[j], s[i]
	}
}

func shuffleInts(r rand.Source, s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := rand.Below(r, i+1)
		s[i], s[j] = s[j], s[i]
	}
}

// TruncateDestructor removes a random downstream consumer edge from node.
func TruncateDestructor(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	return Truncate(r, sc, g)
}

// ExtendDestructor attaches a new downstream consumer, mirroring Extend.
func ExtendDestructor(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	return Extend(r, sc, g)
}

// TruncateConstructor removes an upstream producer edge, reverting the
// port to unfilled and recompleting.
func TruncateConstructor(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	ids := apiNodeIDs(g)
	var withProducer []int
	for _, id := range ids {
		n := g.nodes[id]
		for _, p := range n.Incoming {
			if p.Filled {
				withProducer = append(withProducer, id)
				break
			}
		}
	}
	if len(withProducer) == 0 {
		return Skipped
	}
	id, _ := rand.Choose(r, withProducer)
	n := g.nodes[id]
	var filled []int
	for i, p := range n.Incoming {
		if p.Filled {
			filled = append(filled, i)
		}
	}
	port, _ := rand.Choose(r, filled)
	g.Disconnect(n.Incoming[port].ProducerID, id)
	return runCompletion(r, sc, g)
}

// ExtendConstructor mints a new producer for an already-filled port,
// replacing the existing one so the edit grows the upstream chain.
func ExtendConstructor(r rand.Source, sc *schema.Schema, g *Graph) MutationResult {
	ids := apiNodeIDs(g)
	var withProducer []int
	for _, id := range ids {
		n := g.nodes[id]
		for _, p := range n.Incoming {
			if p.Filled {
				withProducer = append(withProducer, id)
				break
			}
		}
	}
	if len(withProducer) == 0 {
		return Skipped
	}
	id, _ := rand.Choose(r, withProducer)
	n := g.nodes[id]
	var filled []int
	for i, p := range n.Incoming {
		if p.Filled {
			filled = append(filled, i)
		}
	}
	port, _ := rand.Choose(r, filled)
	required := n.Incoming[port].RequiredType
	sig, _, ok := sc.Concretize(r, schema.Query{Ret: required}, false)
	if !ok {
		return Skipped
	}
	g.Disconnect(n.Incoming[port].ProducerID, id)
	newID := g.materializeApi(r, sc, sig, n.Depth+1)
	g.Connect(newID, id, port)
	return runCompletion(r, sc, g)
}
