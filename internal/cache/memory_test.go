package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	t.Cleanup(m.Close)
	ctx := context.Background()

	got, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "missing key is a nil miss, not an error")

	require.NoError(t, m.Set(ctx, "k", []byte("value"), time.Minute))

	got, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	t.Cleanup(m.Close)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotNil(t, got)

	time.Sleep(20 * time.Millisecond)

	got, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry reads as a miss")
}

func TestMemoryLastWriterWins(t *testing.T) {
	m := NewMemory()
	t.Cleanup(m.Close)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("first"), time.Minute))
	require.NoError(t, m.Set(ctx, "k", []byte("second"), time.Minute))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	t.Cleanup(m.Close)
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, m.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "stored value isolated from caller mutation")

	got[0] = 'Y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again, "returned value isolated from caller mutation")
}

func TestNoopAlwaysMisses(t *testing.T) {
	n := NewNoop()
	ctx := context.Background()

	require.NoError(t, n.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := n.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}
