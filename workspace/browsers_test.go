package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowsers_getAndPrune(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bs := NewBrowsers(time.Minute, 10)
	bs.now = func() time.Time { return now }

	a, idA := bs.Get("")
	require.NotEmpty(t, idA)
	b, idB := bs.Get("unknown")
	assert.NotEqual(t, idA, idB)
	assert.NotEqual(t, "unknown", idB)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, bs.Len())

	now = now.Add(45 * time.Second)
	got, id := bs.Get(idA)
	assert.Same(t, a, got)
	assert.Equal(t, idA, id)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, bs.Prune(), "only the untouched browser is idle")
	_, ok := bs.items[idA]
	assert.True(t, ok)
	assert.Equal(t, 1, bs.Len())
}

func TestBrowsers_evictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bs := NewBrowsers(time.Hour, 2)
	bs.now = func() time.Time { return now }

	_, first := bs.Get("")
	now = now.Add(time.Second)
	_, second := bs.Get("")
	now = now.Add(time.Second)
	bs.Get(first)
	now = now.Add(time.Second)
	_, third := bs.Get("")

	assert.Equal(t, 2, bs.Len())
	_, ok := bs.items[second]
	assert.False(t, ok)
	for _, id := range []string{first, third} {
		_, ok := bs.items[id]
		assert.True(t, ok, id)
	}
}
