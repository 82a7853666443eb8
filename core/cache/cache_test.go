package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestCache_LoadsOnceUntilExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	c := New[string, string](10, time.Minute, clk.Now)

	loads := 0
	load := func() (string, error) {
		loads++
		return "alice", nil
	}

	v, err := c.Get("76561197960265730", load)
	require.NoError(t, err)
	assert.Equal(t, "alice", v)

	// Second lookup within the TTL must not hit the loader.
	_, err = c.Get("76561197960265730", load)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)

	clk.Advance(2 * time.Minute)

	_, err = c.Get("76561197960265730", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads, "expired entry should be reloaded")
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := New[string, string](10, time.Minute, nil)

	loads := 0
	failing := func() (string, error) {
		loads++
		return "", errors.New("profile service down")
	}

	_, err := c.Get("x", failing)
	assert.Error(t, err)

	_, err = c.Get("x", failing)
	assert.Error(t, err)
	assert.Equal(t, 2, loads)
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	c := New[int, int](2, 0, clk.Now)

	for i := 1; i <= 3; i++ {
		_, err := c.Get(i, func() (int, error) { return i * 10, nil })
		require.NoError(t, err)
		clk.Advance(time.Second)
	}

	assert.Equal(t, 2, c.Len())

	// Key 1 was the oldest and must have been evicted.
	loads := 0
	_, err := c.Get(1, func() (int, error) { loads++; return 10, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string, int](4, time.Hour, nil)

	_, err := c.Get("k", func() (int, error) { return 1, nil })
	require.NoError(t, err)

	c.Invalidate("k")

	loads := 0
	_, err = c.Get("k", func() (int, error) { loads++; return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}
