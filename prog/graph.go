// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"fmt"

	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

// GNodeKind distinguishes the two kinds of Graph node.
type GNodeKind int

const (
	ApiNode GNodeKind = iota
	ConstantNode
)

// GPort is one argument port of an ApiNode: either unfilled (awaiting a
// producer) or filled by an edge from another node.
type GPort struct {
	RequiredType *schema.Type
	Filled       bool
	ProducerID   int
}

// outEdge is one entry of an ApiNode's Outgoing list: a consumer and the
// port index on that consumer the edge feeds.
type outEdge struct {
	ConsumerID int
	Port       int
}

// GNode is one node of the dependency Graph (C4): an Api call or a
// Constant value template.
type GNode struct {
	ID    int
	Depth float64 // fractional so SpliceIn always has a midpoint to insert at
	Kind  GNodeKind

	// Api fields.
	Endpoint        string
	Conv            schema.CallConvention
	Receiver        string
	ReturnType      *schema.Type
	Context         []byte // seeds BytesRand for this node's Constant children
	Incoming        []GPort
	Outgoing        []outEdge
	EvaluationOrder []int // permutation of Incoming indices

	// Constant fields.
	ConstantType *schema.Type
}

func (n *GNode) hasUnfilledPort() bool {
	for _, p := range n.Incoming {
		if !p.Filled {
			return true
		}
	}
	return false
}

// Graph is the typed dependency-graph input representation (C4).
type Graph struct {
	nodes    map[int]*GNode
	order    []int // node ids in creation order, for deterministic iteration
	RootID   int
	nextID   int
	maxDepth float64
}

// ErrHugeGraph is returned by Complete when the completion worklist
// exceeds MaxCompletionIter; the caller must revert to the pre-edit clone.
var ErrHugeGraph = graphErr("graph grew past MaxCompletionIter")

type graphErr string

func (e graphErr) Error() string { return string(e) }

func newGraph() *Graph {
	return &Graph{nodes: map[int]*GNode{}}
}

func (g *Graph) mintID() int {
	id := g.nextID
	g.nextID++
	return id
}

func (g *Graph) addNode(n *GNode) {
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	if n.Depth > g.maxDepth {
		g.maxDepth = n.Depth
	}
}

// Node looks up a node by id.
func (g *Graph) Node(id int) (*GNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node id in creation order.
func (g *Graph) Nodes() []int {
	return g.order
}

// Seed picks any endpoint of sc (SignatureGuess has no builtin marker, so
// no endpoint is excluded), concretizes it, and creates the
// root Api node at depth 0 (spec §4.4). An empty schema has no endpoint to
// seed from, so Seed reports an error rather than panicking.
func Seed(r rand.Source, sc *schema.Schema) (*Graph, error) {
	name, ok := rand.Choose(r, sc.Iterate())
	if !ok {
		return nil, fmt.Errorf("prog: cannot seed Graph from empty schema")
	}
	sg, _ := sc.Lookup(name)
	g := newGraph()
	root := g.newApiNode(r, sg, 0)
	g.RootID = root.ID
	return g, nil
}

func (g *Graph) newApiNode(r rand.Source, sg *schema.SignatureGuess, depth float64) *GNode {
	n := &GNode{
		ID:       g.mintID(),
		Depth:    depth,
		Kind:     ApiNode,
		Endpoint: sg.Name,
		Conv:     sg.Conv,
		Receiver: sg.Receiver,
		Context:  rand.ContextByteSeq(r, DefaultContextSize),
		Incoming: make([]GPort, len(sg.Args)),
	}
	for i, tg := range sg.Args {
		n.Incoming[i] = GPort{RequiredType: tg.Sample(r)}
	}
	n.ReturnType = sg.ReturnType.Sample(r)
	g.addNode(n)
	return n
}

func (g *Graph) newConstantNode(t *schema.Type, depth float64) *GNode {
	n := &GNode{ID: g.mintID(), Depth: depth, Kind: ConstantNode, ConstantType: t}
	g.addNode(n)
	return n
}

// Connect wires producer src into consumer dst's port (spec §4.4):
// asserts both nodes exist and src.Depth > dst.Depth. It is the sole place
// that appends to dst.EvaluationOrder, so every port's entry is recorded
// exactly once, when that port's edge is actually wired.
func (g *Graph) Connect(srcID, dstID, port int) {
	src, ok := g.nodes[srcID]
	if !ok {
		panic("prog: Connect: unknown src node")
	}
	dst, ok := g.nodes[dstID]
	if !ok {
		panic("prog: Connect: unknown dst node")
	}
	if src.Depth <= dst.Depth {
		panic("prog: Connect: acyclicity violated, src.Depth must exceed dst.Depth")
	}
	dst.Incoming[port] = GPort{RequiredType: dst.Incoming[port].RequiredType, Filled: true, ProducerID: srcID}
	src.Outgoing = append(src.Outgoing, outEdge{ConsumerID: dstID, Port: port})
	dst.EvaluationOrder = append(dst.EvaluationOrder, port)
}

// Disconnect removes the edge between src and dst, symmetrically on both
// adjacency lists (swap-remove), leaving dst's port Unfilled.
func (g *Graph) Disconnect(srcID, dstID int) {
	src, ok := g.nodes[srcID]
	if !ok {
		return
	}
	dst, ok := g.nodes[dstID]
	if !ok {
		return
	}
	for i, e := range src.Outgoing {
		if e.ConsumerID == dstID {
			last := len(src.Outgoing) - 1
			src.Outgoing[i] = src.Outgoing[last]
			src.Outgoing = src.Outgoing[:last]
			dst.Incoming[e.Port] = GPort{RequiredType: dst.Incoming[e.Port].RequiredType}
			for j, p := range dst.EvaluationOrder {
				if p == e.Port {
					last := len(dst.EvaluationOrder) - 1
					dst.EvaluationOrder[j] = dst.EvaluationOrder[last]
					dst.EvaluationOrder = dst.EvaluationOrder[:last]
					break
				}
			}
			return
		}
	}
}

// Complete drains the unfulfilled-node worklist via fillNode, bounded by
// MaxCompletionIter (spec §4.4).
func (g *Graph) Complete(r rand.Source, sc *schema.Schema) error {
	worklist := []int{}
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == ApiNode && n.hasUnfilledPort() {
			worklist = append(worklist, id)
		}
	}
	iters := 0
	for len(worklist) > 0 {
		iters++
		if iters > MaxCompletionIter {
			return ErrHugeGraph
		}
		id := worklist[0]
		worklist = worklist[1:]
		n := g.nodes[id]
		if n == nil {
			continue
		}
		newIDs := g.fillNode(r, sc, n)
		worklist = append(worklist, newIDs...)
	}
	return nil
}

// fillNode visits every unfilled port of consumer (spec §4.4, numbered
// steps 1-2) and returns the ids of any freshly minted Api nodes so the
// caller's worklist can process them.
func (g *Graph) fillNode(r rand.Source, sc *schema.Schema, consumer *GNode) []int {
	var minted []int
	for port, p := range consumer.Incoming {
		if p.Filled {
			continue
		}
		if rand.Coinflip(r, FillReuseRate) {
			if producerID, ok := g.findReusableProducer(r, p.RequiredType, consumer.Depth); ok {
				g.Connect(producerID, consumer.ID, port)
				continue
			}
		}
		newDepth := consumer.Depth + 1
		if p.RequiredType.Kind == schema.Class {
			conv := schema.Constructor
			sig, _, ok := sc.Concretize(r, schema.Query{Ret: p.RequiredType, Conv: &conv}, false)
			if ok {
				id := g.materializeApi(r, sc, sig, newDepth)
				g.Connect(id, consumer.ID, port)
				minted = append(minted, id)
				continue
			}
			// No constructor available: fall back to a Constant(Null)
			// template rather than leave the port permanently unfillable.
			id := g.newConstantNode(schema.NewScalar(schema.Null), newDepth).ID
			g.Connect(id, consumer.ID, port)
			continue
		}
		if !rand.Coinflip(r, FillConstantRate) {
			if sig, _, ok := sc.Concretize(r, schema.Query{Ret: p.RequiredType}, false); ok {
				id := g.materializeApi(r, sc, sig, newDepth)
				g.Connect(id, consumer.ID, port)
				minted = append(minted, id)
				continue
			}
		}
		id := g.newConstantNode(p.RequiredType, newDepth).ID
		g.Connect(id, consumer.ID, port)
	}
	return minted
}

// materializeApi creates an Api node from an already-concretized Signature
// (ports are pre-filled with their concrete required types; fillNode still
// owns wiring producers for them on subsequent worklist passes).
func (g *Graph) materializeApi(r rand.Source, sc *schema.Schema, sig *schema.Signature, depth float64) int {
	n := &GNode{
		ID:       g.mintID(),
		Depth:    depth,
		Kind:     ApiNode,
		Endpoint: sig.Endpoint,
		Conv:     sig.Conv,
		Receiver: sig.Receiver,
		Context:  rand.ContextByteSeq(r, DefaultContextSize),
		Incoming: make([]GPort, len(sig.Args)),
	}
	for i, t := range sig.Args {
		n.Incoming[i] = GPort{RequiredType: t}
	}
	n.ReturnType = sig.ReturnType
	g.addNode(n)
	return n.ID
}

// findReusableProducer looks for any existing node whose produced type
// matches required and whose depth strictly exceeds consumerDepth.
func (g *Graph) findReusableProducer(r rand.Source, required *schema.Type, consumerDepth float64) (int, bool) {
	var candidates []int
	for _, id := range g.order {
		n := g.nodes[id]
		if n.Depth <= consumerDepth {
			continue
		}
		produced := n.ReturnType
		if n.Kind == ConstantNode {
			produced = n.ConstantType
		}
		if produced.Equal(required) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	id, _ := rand.Choose(r, candidates)
	return id, true
}

// Reroot walks incoming edges from the current root until a node with no
// incoming edges (from the root's perspective, a node nothing feeds into
// it as a consumer) is reached — practically, it climbs to an ancestor
// with no remaining unconsumed producers above it, per spec §4.4.
func (g *Graph) Reroot() {
	cur := g.RootID
	for {
		n := g.nodes[cur]
		if n == nil || len(n.Incoming) == 0 {
			break
		}
		next := -1
		for _, p := range n.Incoming {
			if p.Filled {
				next = p.ProducerID
				break
			}
		}
		if next < 0 {
			break
		}
		cur = next
	}
	g.RootID = cur
}

// Cleanup performs undirected mark-and-sweep from the root, removing
// unreachable nodes and any dangling edges left behind.
func (g *Graph) Cleanup() {
	reachable := map[int]bool{}
	var visit func(id int)
	visit = func(id int) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		n := g.nodes[id]
		if n == nil {
			return
		}
		for _, p := range n.Incoming {
			if p.Filled {
				visit(p.ProducerID)
			}
		}
		for _, e := range n.Outgoing {
			visit(e.ConsumerID)
		}
	}
	visit(g.RootID)

	var newOrder []int
	for _, id := range g.order {
		if reachable[id] {
			newOrder = append(newOrder, id)
			continue
		}
		delete(g.nodes, id)
	}
	g.order = newOrder
	for _, id := range g.order {
		n := g.nodes[id]
		n.Outgoing = filterOutgoing(n.Outgoing, reachable)
	}
}

func filterOutgoing(edges []outEdge, reachable map[int]bool) []outEdge {
	var out []outEdge
	for _, e := range edges {
		if reachable[e.ConsumerID] {
			out = append(out, e)
		}
	}
	return out
}

// OffsetIDs translates every node id (and every reference to it) by by;
// used to merge two graphs without id collisions during Crossover. Depths
// are untouched; SetMaxDepth handles repositioning those.
func (g *Graph) OffsetIDs(by int) {
	newNodes := make(map[int]*GNode, len(g.nodes))
	for id, n := range g.nodes {
		n.ID = id + by
		for i := range n.Incoming {
			if n.Incoming[i].Filled {
				n.Incoming[i].ProducerID += by
			}
		}
		for i := range n.Outgoing {
			n.Outgoing[i].ConsumerID += by
		}
		newNodes[n.ID] = n
	}
	g.nodes = newNodes
	for i := range g.order {
		g.order[i] += by
	}
	g.RootID += by
	g.nextID += by
}

// SetMaxDepth shifts every node's depth so the graph's minimum depth
// becomes floor. CrossoverGraph uses it to keep every donor depth below
// the depth of the recipient node that feeds the donor.
func (g *Graph) SetMaxDepth(floor float64) {
	minDepth := 0.0
	first := true
	for _, id := range g.order {
		d := g.nodes[id].Depth
		if first || d < minDepth {
			minDepth = d
			first = false
		}
	}
	shift := floor - minDepth
	if shift == 0 {
		return
	}
	g.maxDepth = 0
	for _, id := range g.order {
		g.nodes[id].Depth += shift
		if g.nodes[id].Depth > g.maxDepth {
			g.maxDepth = g.nodes[id].Depth
		}
	}
}

// Clone deep-copies g.
func (g *Graph) Clone() *Graph {
	out := &Graph{nodes: make(map[int]*GNode, len(g.nodes)), order: append([]int(nil), g.order...),
		RootID: g.RootID, nextID: g.nextID, maxDepth: g.maxDepth}
	for id, n := range g.nodes {
		cp := *n
		cp.Context = append([]byte(nil), n.Context...)
		cp.Incoming = append([]GPort(nil), n.Incoming...)
		cp.Outgoing = append([]outEdge(nil), n.Outgoing...)
		cp.EvaluationOrder = append([]int(nil), n.EvaluationOrder...)
		out.nodes[id] = &cp
	}
	return out
}

// IsValid checks the acyclicity invariant across every edge: every
// producer's depth strictly exceeds its consumer's.
func (g *Graph) IsValid() bool {
	for _, id := range g.order {
		n := g.nodes[id]
		for _, p := range n.Incoming {
			if !p.Filled {
				continue
			}
			prod, ok := g.nodes[p.ProducerID]
			if !ok || prod.Depth <= n.Depth {
				return false
			}
		}
	}
	return true
}
