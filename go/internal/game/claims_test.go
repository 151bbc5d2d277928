package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimQueue(t *testing.T) {
	q := NewClaimQueue(2)
	a, b, c := &Player{ID: 0}, &Player{ID: 1}, &Player{ID: 2}

	_, ok := q.Poll()
	require.False(t, ok)

	require.NoError(t, q.Publish(a))
	require.NoError(t, q.Publish(b))
	require.NoError(t, q.Publish(a), "republishing is a no-op")
	assert.Equal(t, 2, q.Len())

	err := q.Publish(c)
	require.ErrorIs(t, err, ErrInvalidState)

	select {
	case <-q.Ready():
	default:
		t.Fatal("expected a ready signal after publish")
	}

	got, ok := q.Poll()
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.False(t, q.Contains(a))
	assert.True(t, q.Contains(b))
}

func TestClaimQueueRemove(t *testing.T) {
	q := NewClaimQueue(3)
	a, b, c := &Player{ID: 0}, &Player{ID: 1}, &Player{ID: 2}
	for _, p := range []*Player{a, b, c} {
		require.NoError(t, q.Publish(p))
	}

	assert.True(t, q.Remove(b))
	assert.False(t, q.Remove(b))

	first, _ := q.Poll()
	second, _ := q.Poll()
	assert.Same(t, a, first)
	assert.Same(t, c, second)
	assert.Equal(t, 0, q.Len())

	require.NoError(t, q.Publish(b), "a withdrawn player may claim again")
	assert.Equal(t, 1, q.Len())
}
