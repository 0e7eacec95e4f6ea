// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

// MutationResult is the outcome every mutation operator reports (spec
// §4.11), shared across ApiSeq, Graph, and ParametricGraph mutators.
type MutationResult int

const (
	// Mutated means the input was changed and the edit should be kept.
	Mutated MutationResult = iota
	// Skipped means the operator's precondition didn't hold; the input is
	// unchanged.
	Skipped
	// Undo means the operator produced an invalid edit (e.g. HugeGraph)
	// and the caller must restore the pre-mutation clone.
	Undo
)

func (m MutationResult) String() string {
	switch m {
	case Mutated:
		return "Mutated"
	case Skipped:
		return "Skipped"
	case Undo:
		return "Undo"
	default:
		return "MutationResult(?)"
	}
}
