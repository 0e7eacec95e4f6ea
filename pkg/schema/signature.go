// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package schema

// CallConvention distinguishes the three ways an endpoint can be invoked
// (spec §3): a free function, an instance method (requires a receiver
// Class port), or a constructor (produces a Class).
type CallConvention int

const (
	Free CallConvention = iota
	Method
	Constructor
)

func (c CallConvention) String() string {
	switch c {
	case Free:
		return "Free"
	case Method:
		return "Method"
	case Constructor:
		return "Constructor"
	default:
		return "CallConvention(?)"
	}
}

// SignatureGuess is the schema's probabilistic description of one
// endpoint: the receiver's class (Method only), the argument port TGs in
// order, and the return-value TG.
type SignatureGuess struct {
	Name       string
	Conv       CallConvention
	Receiver   string // class name; valid iff Conv == Method
	Args       []*TypeGuess
	ReturnType *TypeGuess
}

// Signature is a fully materialized, concrete call shape produced by
// Concretize: every port and the return slot carry a concrete Type rather
// than a TypeGuess.
type Signature struct {
	Endpoint   string
	Conv       CallConvention
	Receiver   string
	Args       []*Type
	ReturnType *Type
}

// PortMap records, for one materialized Signature, which prior ApiSeq/Graph
// output (by index) was chosen to satisfy each argument port — nil entries
// mean the port is filled by a freshly sampled constant instead of a reused
// output (spec §4.3's producer/reuse distinction).
type PortMap struct {
	ArgSource []int // -1 = fresh constant; >= 0 = index of reused prior output
}
