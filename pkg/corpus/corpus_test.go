// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/feedback"
	"github.com/google/railcar/pkg/rand"
)

func TestAddCountGet(t *testing.T) {
	c := New()
	id0 := c.Add("first", 1, feedback.InputValidityMetadata{IsValid: true})
	id1 := c.Add("second", 1, feedback.InputValidityMetadata{IsValid: false})
	assert.Equal(t, 2, c.Count())
	assert.NotEqual(t, id0, id1)

	e, ok := c.Get(id0)
	require.True(t, ok)
	assert.Equal(t, "first", e.Data)

	_, ok = c.Get(999)
	assert.False(t, ok)
}

func TestChooseWeightedPrefersValidEntries(t *testing.T) {
	c := New()
	c.Add("invalid", 10, feedback.InputValidityMetadata{IsValid: false})
	c.Add("valid", 10, feedback.InputValidityMetadata{IsValid: true})

	r := rand.Wrap(rand.New(1))
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		e, ok := c.ChooseWeighted(r)
		require.True(t, ok)
		counts[e.Data.(string)]++
	}
	// "valid" carries 2x the weight of "invalid", so it should be picked
	// roughly twice as often; allow a generous margin for sampling noise.
	assert.Greater(t, counts["valid"], counts["invalid"])
	assert.Greater(t, counts["valid"], 1000)
}

func TestChooseWeightedEmptyCorpus(t *testing.T) {
	c := New()
	_, ok := c.ChooseWeighted(rand.Wrap(rand.New(1)))
	assert.False(t, ok)
}

func TestChoosePlainUniform(t *testing.T) {
	c := New()
	c.Add("a", 1000, feedback.InputValidityMetadata{IsValid: true})
	c.Add("b", 1, feedback.InputValidityMetadata{IsValid: false})

	r := rand.Wrap(rand.New(2))
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		e, ok := c.ChoosePlain(r)
		require.True(t, ok)
		counts[e.Data.(string)]++
	}
	// Ignoring weight entirely, both entries should land roughly 50/50
	// despite "a" having 1000x the baseline weight.
	assert.InDelta(t, 1000, counts["a"], 300)
	assert.InDelta(t, 1000, counts["b"], 300)
}

func TestEntriesReturnsCopy(t *testing.T) {
	c := New()
	c.Add("x", 1, feedback.InputValidityMetadata{})
	entries := c.Entries()
	entries[0] = nil
	fresh := c.Entries()
	assert.NotNil(t, fresh[0])
}
