// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"github.com/google/railcar/pkg/havoc"
	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

// SpliceSeq removes a random call and recompletes the sequence (spec
// §4.3). Precondition: len(s.Calls) >= 2.
func SpliceSeq(r rand.Source, sc *schema.Schema, s *ApiSeq) MutationResult {
	if len(s.Calls) < 2 {
		return Skipped
	}
	idx := rand.Below(r, len(s.Calls))
	s.Remove(idx)
	s.Complete(r, sc)
	return Mutated
}

// ExtendSeq appends a random endpoint and recompletes the sequence.
func ExtendSeq(r rand.Source, sc *schema.Schema, s *ApiSeq) MutationResult {
	s.Append(r, sc)
	s.Complete(r, sc)
	return Mutated
}

// RemoveSuffixSeq truncates the last call. Precondition: len >= 2.
func RemoveSuffixSeq(r rand.Source, s *ApiSeq) MutationResult {
	if len(s.Calls) < 2 {
		return Skipped
	}
	s.Remove(len(s.Calls) - 1)
	return Mutated
}

// RemovePrefixSeq shifts (disowning references to call 0) and recompletes.
// Precondition: len >= 2.
func RemovePrefixSeq(r rand.Source, sc *schema.Schema, s *ApiSeq) MutationResult {
	if len(s.Calls) < 2 {
		return Skipped
	}
	s.Shift()
	s.Complete(r, sc)
	return Mutated
}

// CrossoverSeq clones other, disjoints its ids from self's, takes a random
// tail of it (marking its dangling Output references as Missing), truncates
// self to a random length, concatenates, and recompletes (spec §4.3).
func CrossoverSeq(r rand.Source, sc *schema.Schema, s *ApiSeq, other *ApiSeq) MutationResult {
	if len(other.Calls) == 0 {
		return Skipped
	}
	donor := other.Clone()
	donor.GenerateFreshIDs()

	tailStart := rand.Below(r, len(donor.Calls))
	tail := append([]Call(nil), donor.Calls[tailStart:]...)
	tailIDs := map[int]bool{}
	for _, c := range tail {
		tailIDs[c.ID] = true
	}
	for i := range tail {
		for j := range tail[i].Args {
			if tail[i].Args[j].Kind == Output && !tailIDs[tail[i].Args[j].OutputID] {
				tail[i].Args[j] = Arg{Kind: Missing}
			}
		}
	}

	keepLen := 0
	if len(s.Calls) > 0 {
		keepLen = rand.Below(r, len(s.Calls)+1)
	}
	s.Calls = s.Calls[:keepLen]

	offset := s.nextID
	for i := range tail {
		tail[i].ID += offset
		for j := range tail[i].Args {
			if tail[i].Args[j].Kind == Output {
				tail[i].Args[j].OutputID += offset
			}
		}
	}
	s.nextID += len(donor.Calls)
	s.Calls = append(s.Calls, tail...)

	s.Complete(r, sc)
	return Mutated
}

// HavocOnFuzz applies standard byte-level mutations to the sequence's
// trailing `fuzz` blob.
func HavocOnFuzz(r rand.Source, s *ApiSeq) MutationResult {
	s.Fuzz = havoc.Mutate(r, s.Fuzz)
	return Mutated
}
