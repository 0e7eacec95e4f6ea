// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package havoc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/google/railcar/pkg/rand"
)

func TestMutateDeterministic(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a := Mutate(rand.Wrap(rand.New(1)), buf)
	b := Mutate(rand.Wrap(rand.New(1)), buf)
	assert.Equal(t, a, b)
}

func TestMutateEmptyBufferGrows(t *testing.T) {
	r := rand.Wrap(rand.New(2))
	out := Mutate(r, nil)
	assert.NotEmpty(t, out)
}

func TestExtendGrowsToLength(t *testing.T) {
	r := rand.Wrap(rand.New(3))
	out := Extend(r, []byte{1, 2}, 10)
	assert.Len(t, out, 10)
	assert.Equal(t, byte(1), out[0])
	assert.Equal(t, byte(2), out[1])
}

func TestExtendNoopWhenAlreadyLongEnough(t *testing.T) {
	r := rand.Wrap(rand.New(4))
	in := []byte{1, 2, 3}
	out := Extend(r, in, 2)
	assert.Equal(t, in, out)
}

func TestMutateManyTimesNeverPanics(t *testing.T) {
	r := rand.Wrap(rand.New(5))
	buf := []byte{}
	for i := 0; i < 500; i++ {
		buf = Mutate(r, buf)
	}
}
