// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package schema

import (
	"github.com/google/railcar/pkg/rand"
)

// ShapeField is one entry of an ordered Object-kind shape guess.
type ShapeField struct {
	Name string
	TG   *TypeGuess
}

// TypeGuess (TG) is the probabilistic type descriptor from spec §3.
//
// Invariants enforced by the constructors below: ObjectShape is non-nil
// iff Kind[Object] > 0, ArrayValueType is non-nil iff Kind[Array] > 0, and
// ClassType is non-nil iff Kind[Class] > 0.
type TypeGuess struct {
	IsAny          bool
	Kind           *rand.Distribution[Kind]
	ObjectShape    []ShapeField
	ArrayValueType *TypeGuess
	ClassType      *rand.Distribution[string]
}

// Any returns the TG that admits every Type with probability 1.
func Any() *TypeGuess {
	return &TypeGuess{IsAny: true}
}

// NewTypeGuess builds a TG from an explicit kind distribution, validating
// the shape/array/class invariants against it. It panics on an invariant
// violation since callers construct TGs from static schema data, not from
// untrusted input — a malformed TG here is a programming error, not a
// run-time condition to recover from.
func NewTypeGuess(kinds *rand.Distribution[Kind], objectShape []ShapeField, arrayValueType *TypeGuess,
	classType *rand.Distribution[string]) *TypeGuess {
	tg := &TypeGuess{Kind: kinds, ObjectShape: objectShape, ArrayValueType: arrayValueType, ClassType: classType}
	tg.checkInvariants()
	return tg
}

func (tg *TypeGuess) checkInvariants() {
	if tg.IsAny {
		return
	}
	if tg.Kind == nil {
		panic("schema: TypeGuess.Kind must be set unless IsAny")
	}
	if tg.Kind.Get(Object) > 0 && tg.ObjectShape == nil {
		panic("schema: TypeGuess.ObjectShape required when Kind[Object] > 0")
	}
	if tg.Kind.Get(Array) > 0 && tg.ArrayValueType == nil {
		panic("schema: TypeGuess.ArrayValueType required when Kind[Array] > 0")
	}
	if tg.Kind.Get(Class) > 0 && tg.ClassType == nil {
		panic("schema: TypeGuess.ClassType required when Kind[Class] > 0")
	}
}

// KindOnly builds a TG that always produces a single Kind (weight 1),
// filling in a trivial shape/array/class payload as required by the
// invariant.
func KindOnly(k Kind, extra ...interface{}) *TypeGuess {
	d := rand.NewDistribution[Kind]()
	d.Set(k, 1)
	tg := &TypeGuess{Kind: d}
	switch k {
	case Object:
		if len(extra) == 1 {
			tg.ObjectShape = extra[0].([]ShapeField)
		} else {
			tg.ObjectShape = []ShapeField{}
		}
	case Array:
		if len(extra) == 1 {
			tg.ArrayValueType = extra[0].(*TypeGuess)
		} else {
			tg.ArrayValueType = Any()
		}
	case Class:
		d2 := rand.NewDistribution[string]()
		if len(extra) == 1 {
			for _, name := range extra[0].([]string) {
				d2.Set(name, 1)
			}
			d2.Normalize()
		}
		tg.ClassType = d2
	}
	return tg
}

func tagOf(t *Type) Kind { return t.Kind }

// CanGuess reports whether tg structurally admits t (spec §3):
// recursive on Object shape, Array element, and Class-name membership.
func (tg *TypeGuess) CanGuess(t *Type) bool {
	if tg.IsAny {
		return true
	}
	if t == nil {
		return false
	}
	if tg.Kind.Get(t.Kind) <= 0 {
		return false
	}
	switch t.Kind {
	case Object:
		for _, f := range t.Fields {
			var fieldTG *TypeGuess
			for _, sf := range tg.ObjectShape {
				if sf.Name == f.Name {
					fieldTG = sf.TG
					break
				}
			}
			if fieldTG == nil {
				// The concrete object carries a field the guess never
				// described: still admissible, since the guess's shape
				// enumerates only the fields it has an opinion about.
				continue
			}
			if !fieldTG.CanGuess(f.Type) {
				return false
			}
		}
		return true
	case Array:
		return tg.ArrayValueType.CanGuess(t.Elem)
	case Class:
		return tg.ClassType.Get(t.Cls) > 0
	default:
		return true
	}
}

// ProbabilityOf returns the probability mass TG assigns to tagof(t): 1 if
// IsAny, 0 if !CanGuess, else kind[tagof(t)].
func (tg *TypeGuess) ProbabilityOf(t *Type) float64 {
	if tg.IsAny {
		return 1
	}
	if !tg.CanGuess(t) {
		return 0
	}
	return tg.Kind.Get(t.Kind)
}

// Overlap reports whether two TGs "overlap" (spec §4.3): either is any, or
// their kind-sets intersect.
func Overlap(a, b *TypeGuess) bool {
	if a.IsAny || b.IsAny {
		return true
	}
	for _, k := range AllKinds {
		if a.Kind.Get(k) > 0 && b.Kind.Get(k) > 0 {
			return true
		}
	}
	return false
}

// OnlyClass reports whether tg's entire probability mass sits on Class —
// used by ApiSeq's complete_one to decide when a Reuse/New producer is
// mandatory rather than optional (spec §4.3).
func (tg *TypeGuess) OnlyClass() bool {
	if tg.IsAny {
		return false
	}
	for _, k := range AllKinds {
		if k != Class && tg.Kind.Get(k) > 0 {
			return false
		}
	}
	return tg.Kind.Get(Class) > 0
}

// WithoutClass returns a TG with the Class weight stripped out and the
// remaining kinds redistributed to sum to 1 again (spec §4.3's "Constant"
// strategy: "strip Class weight from the TG, redistribute, sample a T").
// It keeps the relative proportions of the other kinds; callers that need
// the stick-breaking Redistribute semantics call that separately.
func (tg *TypeGuess) WithoutClass() *TypeGuess {
	if tg.IsAny {
		return tg
	}
	d := rand.NewDistribution[Kind]()
	for _, k := range AllKinds {
		if k == Class {
			continue
		}
		w := tg.Kind.Get(k)
		if w > 0 {
			d.Set(k, w)
		}
	}
	d.Normalize()
	out := &TypeGuess{Kind: d, ObjectShape: tg.ObjectShape, ArrayValueType: tg.ArrayValueType}
	return out
}

// Sample draws a concrete Type from tg (used when concretize materializes
// an unconstrained port or return type).
func (tg *TypeGuess) Sample(r rand.Source) *Type {
	if tg.IsAny {
		// An unconstrained "any" slot still needs *some* concrete type;
		// bias toward scalars the way a typical dynamic-language value
		// distribution does, and never hand back Class (classes are
		// only produced by calls, per spec §3).
		scalars := []Kind{Number, String, Boolean, Null, Undefined}
		k, _ := rand.Choose(r, scalars)
		return NewScalar(k)
	}
	k := tg.Kind.Sample(r)
	switch k {
	case Object:
		var fields []Field
		for _, sf := range tg.ObjectShape {
			fields = append(fields, Field{Name: sf.Name, Type: sf.TG.Sample(r)})
		}
		return NewObject(fields...)
	case Array:
		return NewArray(tg.ArrayValueType.Sample(r))
	case Class:
		name := tg.ClassType.Sample(r)
		return NewClass(name)
	default:
		return NewScalar(k)
	}
}

// Clone deep-copies tg.
func (tg *TypeGuess) Clone() *TypeGuess {
	if tg == nil {
		return nil
	}
	out := &TypeGuess{IsAny: tg.IsAny}
	if tg.Kind != nil {
		out.Kind = tg.Kind.Clone()
	}
	if tg.ObjectShape != nil {
		out.ObjectShape = make([]ShapeField, len(tg.ObjectShape))
		for i, sf := range tg.ObjectShape {
			out.ObjectShape[i] = ShapeField{Name: sf.Name, TG: sf.TG.Clone()}
		}
	}
	out.ArrayValueType = tg.ArrayValueType.Clone()
	if tg.ClassType != nil {
		out.ClassType = tg.ClassType.Clone()
	}
	return out
}
