package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tealscan/tealscan/pkg/report"
)

func sampleResult() *report.Result {
	return &report.Result{
		File:    "prog.teal",
		Version: 2,
		Findings: []report.Finding{
			{
				Detector:    "missing-fee-check",
				Description: "program can approve a transaction with an arbitrarily large fee",
				Paths: []report.PathInfo{
					{Blocks: []int{0, 1, 5}, Lines: "1-4 -> 5-8 -> 20-21"},
				},
			},
		},
	}
}

func TestKey(t *testing.T) {
	src := []byte("int 1\nreturn")
	k1 := Key(src, 0, []string{"a", "b"})
	assert.Len(t, k1, 64)

	// Detector order does not matter.
	assert.Equal(t, k1, Key(src, 0, []string{"b", "a"}))

	// Everything else does.
	assert.NotEqual(t, k1, Key([]byte("int 0\nreturn"), 0, []string{"a", "b"}))
	assert.NotEqual(t, k1, Key(src, 3, []string{"a", "b"}))
	assert.NotEqual(t, k1, Key(src, 0, []string{"a"}))
}

func TestStoreRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	key := Key([]byte("int 1\nreturn"), 0, []string{"missing-fee-check"})
	_, found := s.Get(key)
	assert.False(t, found)

	want := sampleResult()
	require.NoError(t, s.Put(key, want))

	got, found := s.Get(key)
	require.True(t, found)
	assert.Equal(t, want, got)
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	key := Key([]byte("src"), 0, []string{"d"})
	require.NoError(t, s.Put(key, sampleResult()))

	// A fresh store over the same directory reads the persisted entry.
	s2, err := Open(dir)
	require.NoError(t, err)
	got, found := s2.Get(key)
	require.True(t, found)
	assert.Equal(t, sampleResult(), got)
}

func TestStoreClear(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	key := Key([]byte("src"), 0, []string{"d"})
	require.NoError(t, s.Put(key, sampleResult()))
	require.NoError(t, s.Clear())

	assert.Equal(t, 0, s.Len())
	_, found := s.Get(key)
	assert.False(t, found)

	s2, err := Open(dir)
	require.NoError(t, err)
	_, found = s2.Get(key)
	assert.False(t, found)
}

func TestStoreMemoryEviction(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	s.maxMem = 2

	keys := []string{
		Key([]byte("a"), 0, nil),
		Key([]byte("b"), 0, nil),
		Key([]byte("c"), 0, nil),
	}
	for _, k := range keys {
		require.NoError(t, s.Put(k, sampleResult()))
	}
	assert.Equal(t, 2, s.Len())

	// The evicted entry is still served from disk.
	_, found := s.Get(keys[0])
	assert.True(t, found)
}
