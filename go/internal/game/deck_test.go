package game

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeck(t *testing.T) {
	d := NewDeck(9, rand.New(rand.NewSource(1)))
	require.Equal(t, 9, d.Len())

	d.Shuffle()
	cards := d.Cards()
	sort.Ints(cards)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, cards, "shuffle keeps every card once")

	top := d.Cards()[0]
	card, ok := d.Draw()
	require.True(t, ok)
	assert.Equal(t, top, card)
	assert.Equal(t, 8, d.Len())

	d.Return(card)
	all := d.Cards()
	assert.Equal(t, card, all[len(all)-1], "returned cards go to the bottom")

	for d.Len() > 0 {
		d.Draw()
	}
	_, ok = d.Draw()
	assert.False(t, ok)
}
