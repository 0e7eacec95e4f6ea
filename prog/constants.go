// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

// MaxCompletionIter bounds Graph.Complete's worklist drain; exceeding it
// reports HugeGraph so the caller can revert the edit.
const MaxCompletionIter = 70

// FillReuseRate is the probability fillNode tries to reuse an existing
// eligible node before minting a new producer or constant.
const FillReuseRate = 0.3

// FillConstantRate is the probability fillNode falls back to a Constant
// node instead of trying to concretize a producer API call, once reuse
// has been ruled out.
const FillConstantRate = 0.4

// MaxContextMutationIterationsLog2 bounds how many havoc operators the
// Context mutation applies to a node's context buffer: between 1 and
// 2^MaxContextMutationIterationsLog2. Context gets this bound from a single
// havoc.Mutate call, whose havoc.MaxOpsLog2 has the same value.
const MaxContextMutationIterationsLog2 = 4

// DefaultContextSize is how many bytes a freshly minted Api node's context
// buffer carries before any Context mutation extends it.
const DefaultContextSize = 32
