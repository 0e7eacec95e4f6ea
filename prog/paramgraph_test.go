// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/rand"
)

func TestCreateFromBytesDeterministic(t *testing.T) {
	sc := graphTestSchema()
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	a, err := CreateFromBytes(append([]byte(nil), buf...), sc)
	require.NoError(t, err)
	b, err := CreateFromBytes(append([]byte(nil), buf...), sc)
	require.NoError(t, err)
	assert.Equal(t, len(a.order), len(b.order))
	for i := range a.order {
		assert.Equal(t, a.nodes[a.order[i]].Endpoint, b.nodes[b.order[i]].Endpoint)
	}
}

func TestHavocParametricGraphChangesBytes(t *testing.T) {
	sc := graphTestSchema()
	pg := NewParametricGraph([]byte{1, 2, 3, 4}, sc)
	r := rand.Wrap(rand.New(1))
	res := HavocParametricGraph(r, pg)
	assert.Equal(t, Mutated, res)
}

func TestMaterializeProducesValidGraph(t *testing.T) {
	sc := graphTestSchema()
	pg := NewParametricGraph([]byte{9, 9, 9, 9, 9, 9, 9, 9, 1, 2, 3}, sc)
	g, err := pg.Materialize()
	require.NoError(t, err)
	assert.True(t, g.IsValid())
}
