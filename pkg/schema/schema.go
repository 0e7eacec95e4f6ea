// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package schema

import "github.com/google/railcar/pkg/rand"

// Schema is an ordered mapping from endpoint name to its SignatureGuess
// (spec §3, §4.2). Ordering is preserved for deterministic iteration, the
// same reason Distribution keeps insertion order.
type Schema struct {
	names []string
	byN   map[string]*SignatureGuess
}

// NewSchema builds an empty schema.
func NewSchema() *Schema {
	return &Schema{byN: map[string]*SignatureGuess{}}
}

// Add registers an endpoint, keyed by SignatureGuess.Name.
func (s *Schema) Add(sg *SignatureGuess) {
	if _, ok := s.byN[sg.Name]; !ok {
		s.names = append(s.names, sg.Name)
	}
	s.byN[sg.Name] = sg
}

// Lookup returns the SignatureGuess registered under name.
func (s *Schema) Lookup(name string) (*SignatureGuess, bool) {
	sg, ok := s.byN[name]
	return sg, ok
}

// Iterate returns every endpoint name in registration order.
func (s *Schema) Iterate() []string {
	return s.names
}

// Classes returns the set of distinct class names any endpoint in s can
// construct (Conv == Constructor) or take as a receiver (Conv == Method).
func (s *Schema) Classes() []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range s.names {
		sg := s.byN[n]
		if sg.Conv == Constructor && sg.ReturnType != nil && sg.ReturnType.ClassType != nil {
			for _, c := range sg.ReturnType.ClassType.Keys() {
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
		if sg.Conv == Method && sg.Receiver != "" && !seen[sg.Receiver] {
			seen[sg.Receiver] = true
			out = append(out, sg.Receiver)
		}
	}
	return out
}

// Len reports the number of registered endpoints.
func (s *Schema) Len() int { return len(s.names) }

// Query describes a concretization request (spec §4.2): an optional
// pinned return-type constraint, an optional call-convention constraint,
// the caller's argument types to satisfy, and optional pinned argument
// values the caller already committed to (by port index into the matched
// entry, sparse — nil where unpinned).
type Query struct {
	Ret      *Type // nil: unconstrained
	Conv     *CallConvention
	Args     []*Type
	PinnedArgs map[int]*Type
}

// candidate is one schema entry that survived the return/callconv/argument
// filters, annotated with the port permutation chosen for query.Args.
type candidate struct {
	sg    *SignatureGuess
	ports []int // ports[i] = index into sg.Args matched to query.Args[i]
}

// Concretize implements the five-step candidate-enumeration-then-materialize
// algorithm (spec §4.2). It never panics: an empty result set is reported
// via the second return value, not an error, since "no candidate" is a
// routine outcome the input engine must handle by trying something else.
func (s *Schema) Concretize(r rand.Source, q Query, likelihood bool) (*Signature, *PortMap, bool) {
	candidates := s.filterReturn(q.Ret)
	candidates = filterConv(candidates, q.Conv)
	candidates = filterArgs(candidates, q.Args)
	if len(candidates) == 0 {
		return nil, nil, false
	}

	var chosen candidate
	if likelihood {
		chosen = pickByLikelihood(r, candidates, q)
	} else {
		idx := rand.Below(r, len(candidates))
		chosen = candidates[idx]
	}

	sig, pm := materialize(r, chosen, q)
	return sig, pm, true
}

func (s *Schema) filterReturn(ret *Type) []candidate {
	var out []candidate
	for _, n := range s.names {
		sg := s.byN[n]
		if ret == nil || sg.ReturnType.CanGuess(ret) {
			out = append(out, candidate{sg: sg})
		}
	}
	return out
}

func filterConv(in []candidate, conv *CallConvention) []candidate {
	if conv == nil {
		return in
	}
	var out []candidate
	for _, c := range in {
		if c.sg.Conv == *conv {
			out = append(out, c)
		}
	}
	return out
}

// filterArgs keeps only candidates for which every T in args can be
// assigned to a distinct port of the candidate's signature, found greedily
// left-to-right; it annotates survivors with the chosen port permutation.
func filterArgs(in []candidate, args []*Type) []candidate {
	var out []candidate
	for _, c := range in {
		used := make([]bool, len(c.sg.Args))
		ports := make([]int, len(args))
		ok := true
		for i, t := range args {
			found := -1
			for p, tg := range c.sg.Args {
				if used[p] {
					continue
				}
				if tg.CanGuess(t) {
					found = p
					break
				}
			}
			if found < 0 {
				ok = false
				break
			}
			used[found] = true
			ports[i] = found
		}
		if ok {
			c.ports = ports
			out = append(out, c)
		}
	}
	return out
}

func pickByLikelihood(r rand.Source, candidates []candidate, q Query) candidate {
	weights := make([]float64, len(candidates))
	var sum float64
	for i, c := range candidates {
		w := 1.0
		for argIdx, port := range c.ports {
			w *= c.sg.Args[port].ProbabilityOf(q.Args[argIdx])
		}
		if q.Ret != nil {
			w *= c.sg.ReturnType.ProbabilityOf(q.Ret)
		}
		weights[i] = w
		sum += w
	}
	if sum <= 0 {
		return candidates[rand.Below(r, len(candidates))]
	}
	p := r.NextFloat() * sum
	var running float64
	for i, w := range weights {
		running += w
		if running > p {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

func materialize(r rand.Source, c candidate, q Query) (*Signature, *PortMap) {
	sg := c.sg
	sig := &Signature{
		Endpoint: sg.Name,
		Conv:     sg.Conv,
		Receiver: sg.Receiver,
		Args:     make([]*Type, len(sg.Args)),
	}
	pm := &PortMap{ArgSource: make([]int, len(sg.Args))}
	for i := range pm.ArgSource {
		pm.ArgSource[i] = -1
	}

	// Ports matched to a pinned query argument get that concrete Type;
	// the rest are sampled fresh from their own TG.
	matchedArg := map[int]*Type{}
	for i, port := range c.ports {
		matchedArg[port] = q.Args[i]
	}
	for p, tg := range sg.Args {
		if t, ok := q.PinnedArgs[p]; ok {
			sig.Args[p] = t
			continue
		}
		if t, ok := matchedArg[p]; ok {
			sig.Args[p] = t
			pm.ArgSource[p] = p
			continue
		}
		sig.Args[p] = tg.Sample(r)
	}

	if q.Ret != nil {
		sig.ReturnType = q.Ret
	} else {
		sig.ReturnType = sg.ReturnType.Sample(r)
	}
	return sig, pm
}
