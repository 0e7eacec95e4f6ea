// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package schema

import "github.com/google/railcar/pkg/rand"

// SchemaVariationArgc resizes sg's argument list in place: grows it by
// appending fresh Any() ports, or shrinks it by dropping trailing ports,
// lower-bounded at 1 when sg.Conv is Method (a method always keeps at
// least its receiver-adjacent port).
func SchemaVariationArgc(r rand.Source, sg *SignatureGuess) {
	lowerBound := 0
	if sg.Conv == Method {
		lowerBound = 1
	}
	cur := len(sg.Args)
	target := cur
	if rand.Boolean(r) {
		target = cur + rand.Between(r, 1, 3)
	} else if cur > lowerBound {
		shrink := rand.Between(r, 1, cur-lowerBound)
		target = cur - shrink
	}
	if target < lowerBound {
		target = lowerBound
	}
	if target > cur {
		for i := cur; i < target; i++ {
			sg.Args = append(sg.Args, Any())
		}
	} else if target < cur {
		sg.Args = sg.Args[:target]
	}
}

// SchemaVariationWeights redistributes tg's kind distribution (and,
// recursively, any Class-name or Object-shape or Array-element
// distributions it carries) via the stick-breaking Redistribute sampler.
func SchemaVariationWeights(r rand.Source, tg *TypeGuess) {
	if tg.IsAny {
		return
	}
	tg.Kind = rand.Redistribute(r, tg.Kind)
	if tg.ClassType != nil && tg.ClassType.Len() > 0 {
		tg.ClassType = rand.Redistribute(r, tg.ClassType)
	}
	for _, sf := range tg.ObjectShape {
		SchemaVariationWeights(r, sf.TG)
	}
	if tg.ArrayValueType != nil {
		SchemaVariationWeights(r, tg.ArrayValueType)
	}
}

// SchemaVariationMakeNullable adds Null and Undefined to tg's kind set
// (if absent) and redistributes, biasing the guess toward occasionally
// producing a nullable value where it previously never did.
func SchemaVariationMakeNullable(r rand.Source, tg *TypeGuess) {
	if tg.IsAny {
		return
	}
	if tg.Kind.Get(Null) == 0 {
		tg.Kind.Set(Null, 1)
	}
	if tg.Kind.Get(Undefined) == 0 {
		tg.Kind.Set(Undefined, 1)
	}
	tg.Kind = rand.Redistribute(r, tg.Kind)
}
