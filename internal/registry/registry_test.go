package registry_test

import (
	"testing"

	"github.com/romshark/tickemit/internal/registry"

	"github.com/stretchr/testify/require"
)

func TestByKeyOrder(t *testing.T) {
	r := registry.NewByKey()
	r.Add(5, nil)
	r.Add(1, nil)
	r.Add(3, nil)
	r.Add(1, nil)

	require.Equal(t, 4, r.Len())
	require.Equal(t, 3, r.Keys())
	require.Equal(t, []int64{1, 1, 3, 5}, keys(r))
}

func TestByInsertionOrder(t *testing.T) {
	r := registry.NewByInsertion()
	r.Add(5, nil)
	r.Add(1, nil)
	r.Add(3, nil)
	r.Add(5, nil)

	require.Equal(t, 4, r.Len())
	require.Equal(t, 3, r.Keys())
	require.Equal(t, []int64{5, 5, 1, 3}, keys(r))
}

func TestGet(t *testing.T) {
	r := registry.NewByKey()
	var calls []int
	a := r.Add(2, func(int64) { calls = append(calls, 1) })
	b := r.Add(2, func(int64) { calls = append(calls, 2) })
	require.NotEqual(t, a.ID, b.ID)

	require.Nil(t, r.Get(7))

	entries := r.Get(2)
	require.Len(t, entries, 2)
	require.Equal(t, a.ID, entries[0].ID)
	require.Equal(t, b.ID, entries[1].ID)
	for _, e := range entries {
		e.Fn(2)
	}
	require.Equal(t, []int{1, 2}, calls)

	// The returned slice is a copy.
	r.Add(2, nil)
	require.Len(t, entries, 2)
	require.Len(t, r.Get(2), 3)
}

func TestMatch(t *testing.T) {
	r := registry.NewByInsertion()
	r.Add(3, nil)
	r.Add(2, nil)
	r.Add(4, nil)
	r.Add(3, nil)

	m := r.Match(nil, func(k int64) bool { return 12%k == 0 })
	require.Len(t, m, 4)
	require.Equal(t, int64(3), m[0].Key)
	require.Equal(t, int64(3), m[1].Key)
	require.Equal(t, int64(2), m[2].Key)
	require.Equal(t, int64(4), m[3].Key)

	m = r.Match(nil, func(k int64) bool { return 9%k == 0 })
	require.Len(t, m, 2)

	require.Empty(t, r.Match(nil, func(int64) bool { return false }))
}

func TestScanInterrupt(t *testing.T) {
	r := registry.NewByKey()
	r.Add(1, nil)
	r.Add(2, nil)
	r.Add(3, nil)

	count := 0
	completed := r.Scan(func(registry.Entry) bool {
		count++
		return count < 2
	})
	require.False(t, completed)
	require.Equal(t, 2, count)
}

func TestClear(t *testing.T) {
	r := registry.NewByInsertion()
	r.Add(9, nil)
	r.Add(4, nil)
	r.Clear()

	require.Zero(t, r.Len())
	require.Zero(t, r.Keys())
	require.Nil(t, r.Get(9))
	require.Empty(t, keys(r))

	// Insertion order starts over after clearing.
	r.Add(4, nil)
	r.Add(9, nil)
	require.Equal(t, []int64{4, 9}, keys(r))
}

func keys(r *registry.Registry) []int64 {
	k := []int64{}
	r.Scan(func(e registry.Entry) bool {
		k = append(k, e.Key)
		return true
	})
	return k
}
