// Copyright 2026 The Railcar Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0 license that can be found in the LICENSE file.

package corpusio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/railcar/pkg/rand"
)

func TestAddIsContentAddressedAndIdempotent(t *testing.T) {
	d, err := Open(t.TempDir(), false)
	require.NoError(t, err)

	id1, err := d.Add([]byte("hello"))
	require.NoError(t, err)
	id2, err := d.Add([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	count, err := d.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetRoundTripsUncompressed(t *testing.T) {
	d, err := Open(t.TempDir(), false)
	require.NoError(t, err)

	id, err := d.Add([]byte("some testcase bytes"))
	require.NoError(t, err)

	got, err := d.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("some testcase bytes"), got)
}

func TestGetRoundTripsCompressed(t *testing.T) {
	d, err := Open(t.TempDir(), true)
	require.NoError(t, err)

	payload := []byte("some testcase bytes, repeated repeated repeated")
	id, err := d.Add(payload)
	require.NoError(t, err)

	got, err := d.Get(id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRandomPicksAnExistingEntry(t *testing.T) {
	d, err := Open(t.TempDir(), false)
	require.NoError(t, err)

	for _, s := range []string{"a", "b", "c"} {
		_, err := d.Add([]byte(s))
		require.NoError(t, err)
	}

	r := rand.Wrap(rand.New(7))
	_, data, err := d.Random(r)
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b", "c"}, string(data))
}

func TestRandomOnEmptyDirFails(t *testing.T) {
	d, err := Open(t.TempDir(), false)
	require.NoError(t, err)

	_, _, err = d.Random(rand.Wrap(rand.New(1)))
	assert.Error(t, err)
}

func TestLoadAllReturnsEveryEntry(t *testing.T) {
	d, err := Open(t.TempDir(), false)
	require.NoError(t, err)

	want := [][]byte{[]byte("x"), []byte("y")}
	for _, w := range want {
		_, err := d.Add(w)
		require.NoError(t, err)
	}

	got, err := d.LoadAll()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
