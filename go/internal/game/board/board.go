// Package board holds the shared table: which card lies in which slot and
// which players have a token on it.
//
// Every slot has its own lock. A card removal strips the slot's tokens under
// that lock, so a concurrent token placement either lands before the removal
// (and is stripped with it) or finds the slot empty. Unrelated slots never
// contend. The card index is guarded separately and is only taken while a
// slot lock is held (slot lock first, index lock second).
package board

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mcdev12/setrush/go/internal/game/events"
)

var (
	ErrSlotOccupied   = errors.New("slot already holds a card")
	ErrSlotOutOfRange = errors.New("slot out of range")
	ErrCardOutOfRange = errors.New("card out of range")
	ErrCardOnBoard    = errors.New("card already on board")
)

const noSlot = -1

type slot struct {
	mu     sync.Mutex
	card   int
	filled bool
	tokens map[int]struct{}
}

// Board is safe for concurrent use.
type Board struct {
	slots []slot

	indexMu    sync.RWMutex
	cardToSlot []int

	em *events.Emitter
}

// New returns an empty board with size slots for cards 0..deckSize-1.
func New(size, deckSize int, em *events.Emitter) *Board {
	b := &Board{
		slots:      make([]slot, size),
		cardToSlot: make([]int, deckSize),
		em:         em,
	}
	for i := range b.slots {
		b.slots[i].tokens = make(map[int]struct{})
	}
	for i := range b.cardToSlot {
		b.cardToSlot[i] = noSlot
	}
	return b
}

// Size is the number of slots.
func (b *Board) Size() int {
	return len(b.slots)
}

func (b *Board) slotAt(s int) (*slot, error) {
	if s < 0 || s >= len(b.slots) {
		return nil, fmt.Errorf("%w: %d", ErrSlotOutOfRange, s)
	}
	return &b.slots[s], nil
}

// PlaceCard puts card on an empty slot.
func (b *Board) PlaceCard(card, s int) error {
	sl, err := b.slotAt(s)
	if err != nil {
		return err
	}
	if card < 0 || card >= len(b.cardToSlot) {
		return fmt.Errorf("%w: %d", ErrCardOutOfRange, card)
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.filled {
		return fmt.Errorf("%w: slot %d holds card %d", ErrSlotOccupied, s, sl.card)
	}

	b.indexMu.Lock()
	if at := b.cardToSlot[card]; at != noSlot {
		b.indexMu.Unlock()
		return fmt.Errorf("%w: card %d at slot %d", ErrCardOnBoard, card, at)
	}
	b.cardToSlot[card] = s
	b.indexMu.Unlock()

	sl.card = card
	sl.filled = true
	b.em.CardPlaced(s, card)
	return nil
}

// RemoveCard clears slot s together with every token on it. It returns the
// removed card and the players whose tokens were stripped; ok is false when
// the slot was already empty.
func (b *Board) RemoveCard(s int) (card int, holders []int, ok bool) {
	sl, err := b.slotAt(s)
	if err != nil {
		return 0, nil, false
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !sl.filled {
		return 0, nil, false
	}

	holders = sortedKeys(sl.tokens)
	if len(holders) > 0 {
		sl.tokens = make(map[int]struct{})
		b.em.TokensCleared(s)
	}

	card = sl.card
	b.indexMu.Lock()
	b.cardToSlot[card] = noSlot
	b.indexMu.Unlock()

	sl.filled = false
	sl.card = 0
	b.em.CardRemoved(s, card)
	return card, holders, true
}

// CardAt returns the card on slot s.
func (b *Board) CardAt(s int) (int, bool) {
	sl, err := b.slotAt(s)
	if err != nil {
		return 0, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.card, sl.filled
}

// SlotOf returns the slot holding card.
func (b *Board) SlotOf(card int) (int, bool) {
	if card < 0 || card >= len(b.cardToSlot) {
		return 0, false
	}
	b.indexMu.RLock()
	defer b.indexMu.RUnlock()
	s := b.cardToSlot[card]
	return s, s != noSlot
}

// CountCards returns the number of occupied slots.
func (b *Board) CountCards() int {
	n := 0
	for i := range b.slots {
		sl := &b.slots[i]
		sl.mu.Lock()
		if sl.filled {
			n++
		}
		sl.mu.Unlock()
	}
	return n
}

// EmptySlots returns the indices of slots without a card.
func (b *Board) EmptySlots() []int {
	var out []int
	for i := range b.slots {
		sl := &b.slots[i]
		sl.mu.Lock()
		if !sl.filled {
			out = append(out, i)
		}
		sl.mu.Unlock()
	}
	return out
}

// Cards returns the cards on the board in slot order.
func (b *Board) Cards() []int {
	var out []int
	for i := range b.slots {
		sl := &b.slots[i]
		sl.mu.Lock()
		if sl.filled {
			out = append(out, sl.card)
		}
		sl.mu.Unlock()
	}
	return out
}

// PlaceToken marks slot s for player. It does nothing and returns false when
// the slot is empty, out of range, or already carries the player's token.
// Callers enforce the per-player token limit.
func (b *Board) PlaceToken(player, s int) bool {
	sl, err := b.slotAt(s)
	if err != nil {
		return false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if !sl.filled {
		return false
	}
	if _, ok := sl.tokens[player]; ok {
		return false
	}
	sl.tokens[player] = struct{}{}
	b.em.TokenPlaced(player, s)
	return true
}

// RemoveToken removes player's token from slot s, reporting whether one was there.
func (b *Board) RemoveToken(player, s int) bool {
	sl, err := b.slotAt(s)
	if err != nil {
		return false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if _, ok := sl.tokens[player]; !ok {
		return false
	}
	delete(sl.tokens, player)
	b.em.TokenRemoved(player, s)
	return true
}

// HasToken reports whether player has a token on slot s.
func (b *Board) HasToken(player, s int) bool {
	sl, err := b.slotAt(s)
	if err != nil {
		return false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	_, ok := sl.tokens[player]
	return ok
}

// Tokens returns the slots carrying player's tokens, ascending.
func (b *Board) Tokens(player int) []int {
	var out []int
	for i := range b.slots {
		sl := &b.slots[i]
		sl.mu.Lock()
		if _, ok := sl.tokens[player]; ok {
			out = append(out, i)
		}
		sl.mu.Unlock()
	}
	return out
}

// TokenHolders returns the players with a token on slot s, ascending.
func (b *Board) TokenHolders(s int) []int {
	sl, err := b.slotAt(s)
	if err != nil {
		return nil
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sortedKeys(sl.tokens)
}

// ClearTokens strips every token from the board.
func (b *Board) ClearTokens() {
	for i := range b.slots {
		sl := &b.slots[i]
		sl.mu.Lock()
		if len(sl.tokens) > 0 {
			sl.tokens = make(map[int]struct{})
		}
		sl.mu.Unlock()
	}
	b.em.AllTokensCleared()
}

func sortedKeys(m map[int]struct{}) []int {
	if len(m) == 0 {
		return nil
	}
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
