package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetExpire(t *testing.T) {
	m := NewMemory(0, 0)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	v, found, _ := m.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, found, _ = m.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemory_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemory(2, 0)
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"), 0)
	_ = m.Set(ctx, "b", []byte("2"), 0)
	_, found, _ := m.Get(ctx, "a")
	require.True(t, found)

	// Lleno: entra c y sale b, el menos usado. El resto del cache sigue vivo.
	_ = m.Set(ctx, "c", []byte("3"), 0)
	assert.Equal(t, 2, m.Len())

	_, found, _ = m.Get(ctx, "b")
	assert.False(t, found)
	for _, k := range []string{"a", "c"} {
		_, found, _ = m.Get(ctx, k)
		assert.True(t, found, k)
	}
}

func TestMemory_MaxTTL(t *testing.T) {
	m := NewMemory(10, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Hour))
	_, found, _ := m.Get(ctx, "k")
	require.True(t, found)

	assert.Eventually(t, func() bool {
		_, found, _ := m.Get(ctx, "k")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestMemory_ReturnsCopy(t *testing.T) {
	m := NewMemory(10, 0)
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("abc"), 0)
	v, _, _ := m.Get(ctx, "k")
	v[0] = 'x'
	again, _, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "://nope", "x:")
	assert.Error(t, err)
}
