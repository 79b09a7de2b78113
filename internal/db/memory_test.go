package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMedium(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("p_b", "2"))
	require.NoError(t, m.Set("p_a", "1"))
	require.NoError(t, m.Set("q_c", "3"))

	keys, err := m.Keys("p_")
	require.NoError(t, err)
	assert.Equal(t, []string{"p_a", "p_b"}, keys)

	require.NoError(t, m.Delete("p_a"))
	require.NoError(t, m.Delete("missing"))
	keys, _ = m.Keys("")
	assert.Equal(t, []string{"p_b", "q_c"}, keys)
}

func TestMemoryAttachSharesData(t *testing.T) {
	a := NewMemory()
	b := a.Attach()

	var fromA, fromB []Change
	defer a.Subscribe(func(c Change) { fromB = append(fromB, c) })()
	defer b.Subscribe(func(c Change) { fromA = append(fromA, c) })()

	require.NoError(t, a.Set("k", "v1"))
	require.NoError(t, b.Set("k", "v2"))

	v, _, _ := a.Get("k")
	assert.Equal(t, "v2", v)
	assert.Equal(t, []Change{{Key: "k", Value: "v1"}}, fromA)
	assert.Equal(t, []Change{{Key: "k", Value: "v2"}}, fromB)
}

func TestMemoryWatchStopsWithContext(t *testing.T) {
	a := NewMemory()
	b := a.Attach()

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Change, 1)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(c Change) { got <- c })
	}()

	require.Eventually(t, func() bool {
		a.shared.mu.Lock()
		defer a.shared.mu.Unlock()
		return len(a.shared.subs) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, b.Set("k", "v"))
	assert.Equal(t, Change{Key: "k", Value: "v"}, <-got)

	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, a.shared.subs)
}
