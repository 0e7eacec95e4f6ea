// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

// Package prog implements the three input representations the fuzzer
// mutates: the linear call-sequence ApiSeq, the typed dependency Graph,
// and the byte-seeded ParametricGraph, together with their mutation
// operators and the crossover helpers shared between them.
package prog

import (
	"fmt"

	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

// MaxSeqLen bounds how long an ApiSeq is allowed to grow before
// complete_one starts forcing the cheapest completion strategy.
const MaxSeqLen = 15

// ArgKind tags one argument slot of a Call.
type ArgKind int

const (
	Missing ArgKind = iota
	Constant
	Output
)

// Arg is one argument slot: exactly one of ConstantType (Constant) or
// OutputID (Output) is meaningful, selected by Kind.
type Arg struct {
	Kind         ArgKind
	ConstantType *schema.Type
	OutputID     int
}

// Call is one unmaterialized invocation in an ApiSeq: an endpoint name and
// its argument slots, each either filled or still Missing. Unlike Graph's
// ApiNode, Call does not carry a CallConvention, and nothing in this
// package reads one for a Call (IsValid checks Output references only);
// the endpoint's convention is recorded only in the Schema, as
// sc.Lookup(Endpoint).Conv.
type Call struct {
	ID       int
	Endpoint string
	Args     []Arg
}

func (c *Call) hasMissing() bool {
	for _, a := range c.Args {
		if a.Kind == Missing {
			return true
		}
	}
	return false
}

// ApiSeq is the linear call-sequence input representation (C3): a list of
// Calls plus a trailing byte blob ("fuzz") from which the worker
// materializes concrete constant values at execution time.
type ApiSeq struct {
	Calls  []Call
	Fuzz   []byte
	nextID int
}

func (s *ApiSeq) mintID() int {
	id := s.nextID
	s.nextID++
	return id
}

// indexOfID returns the slice position of the call with the given id, or
// -1 if absent.
func (s *ApiSeq) indexOfID(id int) int {
	for i := range s.Calls {
		if s.Calls[i].ID == id {
			return i
		}
	}
	return -1
}

// Create builds a fresh ApiSeq (spec §4.3): picks any endpoint, appends one
// unfulfilled call, and drains the completion worklist. An empty schema has
// no endpoint to pick, so Create reports an error rather than panicking
// (spec §8 scenario 1).
func Create(r rand.Source, sc *schema.Schema, fuzzBytes []byte) (*ApiSeq, error) {
	name, ok := rand.Choose(r, sc.Iterate())
	if !ok {
		return nil, fmt.Errorf("prog: cannot create ApiSeq from empty schema")
	}
	s := &ApiSeq{Fuzz: fuzzBytes}
	s.appendUnfulfilled(sc, name)
	s.Complete(r, sc)
	return s, nil
}

// appendUnfulfilled pushes a new call for endpoint name with every
// argument slot set to Missing, returning its fresh id.
func (s *ApiSeq) appendUnfulfilled(sc *schema.Schema, name string) int {
	sg, ok := sc.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("prog: unknown endpoint %q", name))
	}
	id := s.mintID()
	s.Calls = append(s.Calls, Call{ID: id, Endpoint: name, Args: make([]Arg, len(sg.Args))})
	return id
}

// Append is the ApiSeq mutation primitive: push an unfulfilled call for a
// random endpoint at the end of the sequence.
func (s *ApiSeq) Append(r rand.Source, sc *schema.Schema) {
	name, ok := rand.Choose(r, sc.Iterate())
	if !ok {
		return
	}
	s.appendUnfulfilled(sc, name)
}

// Remove deletes the call at position idx; any Output arg elsewhere in the
// sequence referencing that call's id reverts to Missing.
func (s *ApiSeq) Remove(idx int) {
	if idx < 0 || idx >= len(s.Calls) {
		return
	}
	removedID := s.Calls[idx].ID
	s.Calls = append(s.Calls[:idx], s.Calls[idx+1:]...)
	for i := range s.Calls {
		for j := range s.Calls[i].Args {
			if s.Calls[i].Args[j].Kind == Output && s.Calls[i].Args[j].OutputID == removedID {
				s.Calls[i].Args[j] = Arg{Kind: Missing}
			}
		}
	}
}

// Shift replaces every Output reference to call 0 with Missing. Call 0
// itself is left in place; callers pair Shift with Complete.
func (s *ApiSeq) Shift() {
	if len(s.Calls) == 0 {
		return
	}
	head := s.Calls[0].ID
	for i := range s.Calls {
		for j := range s.Calls[i].Args {
			if s.Calls[i].Args[j].Kind == Output && s.Calls[i].Args[j].OutputID == head {
				s.Calls[i].Args[j] = Arg{Kind: Missing}
			}
		}
	}
}

// Complete worklist-drains CompleteOne over every call that still has a
// Missing argument (spec §4.3).
func (s *ApiSeq) Complete(r rand.Source, sc *schema.Schema) {
	worklist := make([]int, 0, len(s.Calls))
	for _, c := range s.Calls {
		if c.hasMissing() {
			worklist = append(worklist, c.ID)
		}
	}
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		newIDs := s.CompleteOne(r, sc, id)
		worklist = append(worklist, newIDs...)
	}
}

// CompleteOne fills every Missing argument of the call identified by id
// (spec §4.3), returning the ids of any fresh producer calls it inserted
// so the caller's worklist can pick them up.
func (s *ApiSeq) CompleteOne(r rand.Source, sc *schema.Schema, id int) []int {
	idx := s.indexOfID(id)
	if idx < 0 {
		return nil
	}
	sg, ok := sc.Lookup(s.Calls[idx].Endpoint)
	if !ok {
		return nil
	}
	var minted []int
	for i := range sg.Args {
		// The New strategy inserts its producer call immediately before
		// id's own call, shifting id's position; re-resolve it before
		// every argument instead of trusting idx from a prior iteration.
		idx = s.indexOfID(id)
		if s.Calls[idx].Args[i].Kind != Missing {
			continue
		}
		tg := sg.Args[i]
		newID, ok := s.resolveMissingArg(r, sc, idx, i, tg)
		if ok {
			minted = append(minted, newID...)
		}
	}
	return minted
}

type strategy int

const (
	stratReuse strategy = iota
	stratNew
	stratConstant
)

func pickStrategy(r rand.Source, seqLen int, tg *schema.TypeGuess) strategy {
	if tg.OnlyClass() {
		if seqLen > MaxSeqLen {
			return stratReuse
		}
		if rand.Boolean(r) {
			return stratReuse
		}
		return stratNew
	}
	if seqLen > MaxSeqLen {
		return stratConstant
	}
	switch rand.Below(r, 3) {
	case 0:
		return stratNew
	case 1:
		return stratReuse
	default:
		return stratConstant
	}
}

// resolveMissingArg fills s.Calls[callIdx].Args[argIdx] (currently Missing)
// in place, cascading Reuse -> New -> Constant as each strategy's
// candidate set turns up empty (Constant always succeeds). It returns the
// ids of any freshly minted producer calls.
func (s *ApiSeq) resolveMissingArg(r rand.Source, sc *schema.Schema, callIdx, argIdx int, tg *schema.TypeGuess) ([]int, bool) {
	switch pickStrategy(r, len(s.Calls), tg) {
	case stratReuse:
		if ids, ok := s.tryReuse(r, sc, callIdx, argIdx, tg); ok {
			return ids, true
		}
		fallthrough
	case stratNew:
		if ids, ok := s.tryNew(r, sc, callIdx, argIdx, tg); ok {
			return ids, true
		}
		fallthrough
	default:
		s.setConstant(r, callIdx, argIdx, tg)
		return nil, true
	}
}

// tryReuse looks for an earlier-in-sequence call whose return TG overlaps
// tg and wires the argument to its Output.
func (s *ApiSeq) tryReuse(r rand.Source, sc *schema.Schema, callIdx, argIdx int, tg *schema.TypeGuess) ([]int, bool) {
	var candidates []int
	for i := 0; i < callIdx; i++ {
		sg, ok := sc.Lookup(s.Calls[i].Endpoint)
		if !ok {
			continue
		}
		if schema.Overlap(sg.ReturnType, tg) {
			candidates = append(candidates, s.Calls[i].ID)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	chosen, _ := rand.Choose(r, candidates)
	s.Calls[callIdx].Args[argIdx] = Arg{Kind: Output, OutputID: chosen}
	return nil, true
}

// tryNew mints a fresh producer call for an endpoint whose return TG
// overlaps tg, inserting it immediately before the consumer.
func (s *ApiSeq) tryNew(r rand.Source, sc *schema.Schema, callIdx, argIdx int, tg *schema.TypeGuess) ([]int, bool) {
	var candidates []string
	for _, name := range sc.Iterate() {
		sg, _ := sc.Lookup(name)
		if schema.Overlap(sg.ReturnType, tg) {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	name, _ := rand.Choose(r, candidates)
	sg, _ := sc.Lookup(name)
	newID := s.mintID()
	producer := Call{ID: newID, Endpoint: name, Args: make([]Arg, len(sg.Args))}
	// Insert immediately before the consumer so the producer runs first.
	s.Calls = append(s.Calls, Call{})
	copy(s.Calls[callIdx+1:], s.Calls[callIdx:])
	s.Calls[callIdx] = producer
	s.Calls[callIdx+1].Args[argIdx] = Arg{Kind: Output, OutputID: newID}
	return []int{newID}, true
}

// setConstant fills the argument with a typed constant template sampled
// from tg (Class-weight stripped and redistributed first, per spec §4.3).
func (s *ApiSeq) setConstant(r rand.Source, callIdx, argIdx int, tg *schema.TypeGuess) {
	if tg.OnlyClass() {
		s.Calls[callIdx].Args[argIdx] = Arg{Kind: Constant, ConstantType: schema.NewScalar(schema.Null)}
		return
	}
	stripped := tg.WithoutClass()
	t := stripped.Sample(r)
	s.Calls[callIdx].Args[argIdx] = Arg{Kind: Constant, ConstantType: t}
}

// GenerateFreshIDs rewrites every call id and Output reference consistently
// with a fresh, gap-free mapping; used by crossover to avoid id collisions
// between two sequences being merged.
func (s *ApiSeq) GenerateFreshIDs() {
	mapping := make(map[int]int, len(s.Calls))
	for i := range s.Calls {
		mapping[s.Calls[i].ID] = i
	}
	for i := range s.Calls {
		s.Calls[i].ID = mapping[s.Calls[i].ID]
		for j := range s.Calls[i].Args {
			if s.Calls[i].Args[j].Kind == Output {
				s.Calls[i].Args[j].OutputID = mapping[s.Calls[i].Args[j].OutputID]
			}
		}
	}
	s.nextID = len(s.Calls)
}

// IsValid checks the structural invariant every mutator must preserve:
// every Output arg refers to a call that both exists and precedes its
// consumer in sequence order.
func (s *ApiSeq) IsValid() bool {
	for i, c := range s.Calls {
		for _, a := range c.Args {
			if a.Kind != Output {
				continue
			}
			j := s.indexOfID(a.OutputID)
			if j < 0 || j >= i {
				return false
			}
		}
	}
	return true
}

// Clone deep-copies s.
func (s *ApiSeq) Clone() *ApiSeq {
	out := &ApiSeq{Fuzz: append([]byte(nil), s.Fuzz...), nextID: s.nextID}
	out.Calls = make([]Call, len(s.Calls))
	for i, c := range s.Calls {
		nc := Call{ID: c.ID, Endpoint: c.Endpoint, Args: append([]Arg(nil), c.Args...)}
		out.Calls[i] = nc
	}
	return out
}

// Equal reports the per-sequence equality used by tests (spec §4.3): fuzz
// bytes match, and traversing both sequences in order, call names and
// argument tags match (Output args compare by positional index, not id).
func (s *ApiSeq) Equal(o *ApiSeq) bool {
	if string(s.Fuzz) != string(o.Fuzz) {
		return false
	}
	if len(s.Calls) != len(o.Calls) {
		return false
	}
	for i := range s.Calls {
		a, b := s.Calls[i], o.Calls[i]
		if a.Endpoint != b.Endpoint || len(a.Args) != len(b.Args) {
			return false
		}
		for j := range a.Args {
			if !argsEqual(s, a.Args[j], o, b.Args[j]) {
				return false
			}
		}
	}
	return true
}

func argsEqual(s *ApiSeq, a Arg, o *ApiSeq, b Arg) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Missing:
		return true
	case Constant:
		return a.ConstantType.Equal(b.ConstantType)
	case Output:
		return s.indexOfID(a.OutputID) == o.indexOfID(b.OutputID)
	default:
		return false
	}
}
