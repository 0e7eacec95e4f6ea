// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/google/railcar/pkg/rand"
)

func TestSchemaVariationArgcRespectsMethodLowerBound(t *testing.T) {
	r := rand.Wrap(rand.New(1))
	sg := &SignatureGuess{Conv: Method, Args: []*TypeGuess{Any()}}
	for i := 0; i < 50; i++ {
		SchemaVariationArgc(r, sg)
		assert.GreaterOrEqual(t, len(sg.Args), 1)
	}
}

func TestSchemaVariationWeightsSumsToOne(t *testing.T) {
	r := rand.Wrap(rand.New(2))
	tg := numberGuess()
	tg.Kind.Set(String, 0.5)
	SchemaVariationWeights(r, tg)
	assert.InDelta(t, 1.0, tg.Kind.Sum(), 1e-9)
}

func TestSchemaVariationMakeNullableAddsNullAndUndefined(t *testing.T) {
	r := rand.Wrap(rand.New(3))
	tg := numberGuess()
	SchemaVariationMakeNullable(r, tg)
	assert.Greater(t, tg.Kind.Get(Null), 0.0)
	assert.Greater(t, tg.Kind.Get(Undefined), 0.0)
}
