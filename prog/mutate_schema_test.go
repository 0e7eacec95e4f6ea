// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/rand"
	"github.com/google/railcar/pkg/schema"
)

func TestSchemaVariationArgcRespectsMethodLowerBound(t *testing.T) {
	sc := graphTestSchema()
	r := rand.Wrap(rand.New(20))
	for i := 0; i < 50; i++ {
		require.Equal(t, Mutated, SchemaVariationArgc(r, sc, nil))
	}
	sg, ok := sc.Lookup("widget.use")
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(sg.Args), 1)
}

func TestSchemaVariationWeightsKeepsDistributionNormalized(t *testing.T) {
	sc := graphTestSchema()
	r := rand.Wrap(rand.New(21))
	require.Equal(t, Mutated, SchemaVariationWeights(r, sc, nil))
	sg, ok := sc.Lookup("identity")
	require.True(t, ok)
	var sum float64
	for _, k := range schema.AllKinds {
		sum += sg.ReturnType.Kind.Get(k)
	}
	if sg.ReturnType.Kind.Len() > 0 {
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestSchemaVariationMakeNullableAddsNullAndUndefined(t *testing.T) {
	sc := graphTestSchema()
	r := rand.Wrap(rand.New(22))
	require.Equal(t, Mutated, SchemaVariationMakeNullable(r, sc, nil))
	found := false
	for _, name := range sc.Iterate() {
		sg, _ := sc.Lookup(name)
		for _, tg := range append([]*schema.TypeGuess{sg.ReturnType}, sg.Args...) {
			if tg.Kind.Get(schema.Null) > 0 && tg.Kind.Get(schema.Undefined) > 0 {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestSchemaVariationOnEmptySchemaIsSkipped(t *testing.T) {
	sc := schema.NewSchema()
	r := rand.Wrap(rand.New(23))
	assert.Equal(t, Skipped, SchemaVariationArgc(r, sc, nil))
}
