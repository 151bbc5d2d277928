package game

import "math/rand"

// Deck is the ordered pile of undealt cards. It is owned by the coordinator
// goroutine and is not safe for concurrent use.
type Deck struct {
	cards []int
	rng   *rand.Rand
}

// NewDeck returns a deck holding every card 0..size-1 once, in order.
func NewDeck(size int, rng *rand.Rand) *Deck {
	cards := make([]int, size)
	for i := range cards {
		cards[i] = i
	}
	return &Deck{cards: cards, rng: rng}
}

func (d *Deck) Len() int {
	return len(d.cards)
}

func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw takes the card at the front of the deck.
func (d *Deck) Draw() (int, bool) {
	if len(d.cards) == 0 {
		return 0, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Return puts cards back at the bottom of the deck.
func (d *Deck) Return(cards ...int) {
	d.cards = append(d.cards, cards...)
}

// Cards returns a copy of the remaining cards.
func (d *Deck) Cards() []int {
	out := make([]int, len(d.cards))
	copy(out, d.cards)
	return out
}
