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

func numTG() *schema.TypeGuess { return schema.KindOnly(schema.Number) }

func testSchema() *schema.Schema {
	s := schema.NewSchema()
	s.Add(&schema.SignatureGuess{
		Name:       "makeWidget",
		Conv:       schema.Constructor,
		Args:       []*schema.TypeGuess{numTG()},
		ReturnType: schema.KindOnly(schema.Class, []string{"Widget"}),
	})
	s.Add(&schema.SignatureGuess{
		Name:       "widget.use",
		Conv:       schema.Method,
		Receiver:   "Widget",
		Args:       []*schema.TypeGuess{schema.KindOnly(schema.Class, []string{"Widget"})},
		ReturnType: numTG(),
	})
	s.Add(&schema.SignatureGuess{
		Name:       "identity",
		Conv:       schema.Free,
		Args:       []*schema.TypeGuess{numTG()},
		ReturnType: numTG(),
	})
	s.Add(&schema.SignatureGuess{
		Name:       "combine",
		Conv:       schema.Free,
		Args:       []*schema.TypeGuess{numTG(), numTG()},
		ReturnType: numTG(),
	})
	return s
}

func TestCreateProducesValidSeq(t *testing.T) {
	sc := testSchema()
	r := rand.Wrap(rand.New(1))
	s, err := Create(r, sc, []byte{1, 2, 3})
	require.NoError(t, err)
	require.NotEmpty(t, s.Calls)
	assert.True(t, s.IsValid())
	for _, c := range s.Calls {
		assert.False(t, c.hasMissing())
	}
}

func TestCreateFromEmptySchemaFails(t *testing.T) {
	sc := schema.NewSchema()
	r := rand.Wrap(rand.New(42))
	s, err := Create(r, sc, nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestCompleteOneInsertsProducerBeforeConsumer(t *testing.T) {
	sc := testSchema()
	r := rand.Wrap(rand.New(2))
	s := &ApiSeq{}
	id := s.appendUnfulfilled(sc, "widget.use")
	s.Complete(r, sc)
	idx := s.indexOfID(id)
	require.True(t, idx >= 0)
	arg := s.Calls[idx].Args[0]
	if arg.Kind == Output {
		assert.Less(t, s.indexOfID(arg.OutputID), idx)
	}
}

// TestCompleteOneHandlesMultipleMissingArgsViaNewStrategy guards against
// CompleteOne trusting a stale call index once an earlier argument's New
// strategy has inserted a producer ahead of it: with a two-arg call, every
// seed that resolves more than one arg via New must still leave every
// call fully filled and every Output reference pointing earlier.
func TestCompleteOneHandlesMultipleMissingArgsViaNewStrategy(t *testing.T) {
	sc := testSchema()
	for seed := int64(0); seed < 50; seed++ {
		r := rand.Wrap(rand.New(seed))
		s := &ApiSeq{}
		s.appendUnfulfilled(sc, "combine")
		s.Complete(r, sc)
		for _, c := range s.Calls {
			assert.False(t, c.hasMissing(), "seed %d left a Missing arg", seed)
		}
		assert.True(t, s.IsValid(), "seed %d produced an invalid sequence", seed)
	}
}

func TestRemoveClearsDownstreamReferences(t *testing.T) {
	s := &ApiSeq{}
	s.Calls = []Call{
		{ID: 0, Endpoint: "makeWidget", Args: []Arg{{Kind: Constant, ConstantType: schema.NewScalar(schema.Number)}}},
		{ID: 1, Endpoint: "widget.use", Args: []Arg{{Kind: Output, OutputID: 0}}},
	}
	s.nextID = 2
	s.Remove(0)
	require.Len(t, s.Calls, 1)
	assert.Equal(t, Missing, s.Calls[0].Args[0].Kind)
}

func TestShiftClearsOnlyCallZeroReferences(t *testing.T) {
	s := &ApiSeq{}
	s.Calls = []Call{
		{ID: 0, Endpoint: "makeWidget"},
		{ID: 1, Endpoint: "widget.use", Args: []Arg{{Kind: Output, OutputID: 0}}},
	}
	s.Shift()
	assert.Equal(t, Missing, s.Calls[1].Args[0].Kind)
	assert.Len(t, s.Calls, 2) // call 0 itself is not removed
}

func TestGenerateFreshIDsRewritesConsistently(t *testing.T) {
	s := &ApiSeq{}
	s.Calls = []Call{
		{ID: 7, Endpoint: "makeWidget"},
		{ID: 9, Endpoint: "widget.use", Args: []Arg{{Kind: Output, OutputID: 7}}},
	}
	s.GenerateFreshIDs()
	assert.Equal(t, 0, s.Calls[0].ID)
	assert.Equal(t, 1, s.Calls[1].ID)
	assert.Equal(t, 0, s.Calls[1].Args[0].OutputID)
	assert.True(t, s.IsValid())
}

func TestEqualComparesByPositionalOutputIndex(t *testing.T) {
	a := &ApiSeq{Fuzz: []byte{1}}
	a.Calls = []Call{
		{ID: 5, Endpoint: "makeWidget"},
		{ID: 6, Endpoint: "widget.use", Args: []Arg{{Kind: Output, OutputID: 5}}},
	}
	b := &ApiSeq{Fuzz: []byte{1}}
	b.Calls = []Call{
		{ID: 100, Endpoint: "makeWidget"},
		{ID: 101, Endpoint: "widget.use", Args: []Arg{{Kind: Output, OutputID: 100}}},
	}
	assert.True(t, a.Equal(b))

	b.Fuzz = []byte{2}
	assert.False(t, a.Equal(b))
}

func TestSpliceSeqRequiresTwoCalls(t *testing.T) {
	sc := testSchema()
	r := rand.Wrap(rand.New(3))
	s := &ApiSeq{}
	s.appendUnfulfilled(sc, "identity")
	res := SpliceSeq(r, sc, s)
	assert.Equal(t, Skipped, res)
}

func TestExtendSeqGrowsSequence(t *testing.T) {
	sc := testSchema()
	r := rand.Wrap(rand.New(4))
	s, err := Create(r, sc, nil)
	require.NoError(t, err)
	before := len(s.Calls)
	ExtendSeq(r, sc, s)
	assert.Greater(t, len(s.Calls), before) // one appended call; completion may also insert producers
	assert.True(t, s.IsValid())
}

func TestRemoveSuffixSeqTruncatesLastCall(t *testing.T) {
	s := &ApiSeq{}
	s.Calls = []Call{{ID: 0, Endpoint: "identity"}, {ID: 1, Endpoint: "identity"}}
	s.nextID = 2
	res := RemoveSuffixSeq(rand.Wrap(rand.New(5)), s)
	assert.Equal(t, Mutated, res)
	assert.Len(t, s.Calls, 1)
}

func TestCrossoverSeqProducesValidResult(t *testing.T) {
	sc := testSchema()
	r := rand.Wrap(rand.New(6))
	a, err := Create(r, sc, []byte{1})
	require.NoError(t, err)
	b, err := Create(r, sc, []byte{2})
	require.NoError(t, err)
	res := CrossoverSeq(r, sc, a, b)
	assert.Equal(t, Mutated, res)
	assert.True(t, a.IsValid())
}

func TestHavocOnFuzzChangesBytes(t *testing.T) {
	s := &ApiSeq{Fuzz: []byte{1, 2, 3, 4}}
	HavocOnFuzz(rand.Wrap(rand.New(7)), s)
	assert.NotNil(t, s.Fuzz)
}
