package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFallbackRoundTrip(t *testing.T) {
	t.Cleanup(Flush)

	require.NoError(t, Set("menu:products", []string{"Latte", "Mocha"}, time.Minute))

	var got []string
	assert.True(t, Get("menu:products", &got))
	assert.Equal(t, []string{"Latte", "Mocha"}, got)

	require.NoError(t, Forget("menu:products"))
	assert.False(t, Get("menu:products", &got))
}

func TestMemoryEntryExpires(t *testing.T) {
	t.Cleanup(Flush)

	require.NoError(t, Set("short", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var n int
	assert.False(t, Get("short", &n))
}

func TestForgetPrefix(t *testing.T) {
	t.Cleanup(Flush)

	require.NoError(t, Set("menu:a", 1, 0))
	require.NoError(t, Set("menu:b", 2, 0))
	require.NoError(t, Set("dashboard", 3, 0))

	require.NoError(t, ForgetPrefix("menu:"))

	var n int
	assert.False(t, Get("menu:a", &n))
	assert.False(t, Get("menu:b", &n))
	assert.True(t, Get("dashboard", &n))
	assert.Equal(t, 3, n)
}

func TestRememberCallsLoaderOnce(t *testing.T) {
	t.Cleanup(Flush)

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return map[string]int{"count": 7}, nil
	}

	var first, second map[string]int
	require.NoError(t, Remember("stats", time.Minute, &first, load))
	require.NoError(t, Remember("stats", time.Minute, &second, load))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 7, second["count"])
}

func TestRememberPropagatesLoaderError(t *testing.T) {
	t.Cleanup(Flush)

	boom := errors.New("boom")
	var out int
	err := Remember("broken", time.Minute, &out, func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
