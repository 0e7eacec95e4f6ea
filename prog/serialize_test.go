// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package prog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/rand"
)

func TestApiSeqRoundTripsThroughSerialization(t *testing.T) {
	sc := testSchema()
	r := rand.Wrap(rand.New(11))
	s, err := Create(r, sc, []byte{9, 9, 9})
	require.NoError(t, err)

	data, err := EncodeApiSeq(s)
	require.NoError(t, err)
	got, err := DecodeApiSeq(data)
	require.NoError(t, err)

	assert := require.New(t)
	assert.True(s.Equal(got))
}

func TestGraphRoundTripsThroughSerialization(t *testing.T) {
	sc := graphTestSchema()
	r := rand.Wrap(rand.New(12))
	g, err := Seed(r, sc)
	require.NoError(t, err)
	require.NoError(t, g.Complete(r, sc))

	data, err := EncodeGraph(g)
	require.NoError(t, err)
	got, err := DecodeGraph(data)
	require.NoError(t, err)

	require.True(t, got.IsValid())
	if diff := cmp.Diff(g.order, got.order); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}
	for _, id := range g.order {
		want, _ := g.Node(id)
		have, ok := got.Node(id)
		require.True(t, ok)
		if diff := cmp.Diff(want, have); diff != "" {
			t.Errorf("node %d mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestParametricGraphRoundTripsThroughSerialization(t *testing.T) {
	sc := graphTestSchema()
	pg := NewParametricGraph([]byte{1, 2, 3, 4, 5, 6, 7, 8}, sc)

	data, err := EncodeParametricGraph(pg)
	require.NoError(t, err)
	got, err := DecodeParametricGraph(data, sc)
	require.NoError(t, err)

	require.Equal(t, pg.Bytes, got.Bytes)
	require.Same(t, sc, got.Schema)

	a, err := got.Materialize()
	require.NoError(t, err)
	b, err := pg.Materialize()
	require.NoError(t, err)
	assert := require.New(t)
	assert.True(a.IsValid())
	assert.True(b.IsValid())
}
