package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/setrush/go/internal/game/events"
)

// placeCards tops the board up to its target from the shuffled deck, picking
// a random empty slot for each card, and restarts the countdown. It reports
// whether any card was dealt.
func (c *Coordinator) placeCards(ctx context.Context) bool {
	target := c.cfg.Target()
	count := c.board.CountCards()
	if count >= target || c.deck.Len() == 0 {
		return false
	}

	prev := c.State()
	c.setState(Dealing)
	defer func() {
		if prev != Shutdown {
			c.setState(prev)
		}
	}()

	c.deck.Shuffle()
	empty := c.board.EmptySlots()
	c.rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })

	dealt := 0
	for _, slot := range empty {
		if count >= target {
			break
		}
		card, ok := c.deck.Draw()
		if !ok {
			break
		}
		if err := c.board.PlaceCard(card, slot); err != nil {
			log.Error().Err(err).Int("card", card).Int("slot", slot).Msg("failed to place card")
			c.deck.Return(card)
			continue
		}
		count++
		dealt++
		if !c.sleep(ctx, c.cfg.TableDelay) {
			break
		}
	}

	log.Debug().
		Int("round", c.round).
		Int("dealt", dealt).
		Int("cards_on_table", count).
		Int("deck_remaining", c.deck.Len()).
		Msg("placed cards")

	c.updateTimerDisplay(true)
	c.em.RoundStarted(events.RoundStartedPayload{
		Round:         c.round,
		CardsOnTable:  count,
		DeckRemaining: c.deck.Len(),
		DeadlineAt:    c.deadline,
	})
	if c.cfg.Hints {
		c.showHints()
	}
	return dealt > 0
}

// removeAllCards returns every card on the board to the deck, clears every
// token and drops every pending selection and claim.
func (c *Coordinator) removeAllCards() {
	if c.State() != Shutdown {
		c.setState(Dealing)
	}

	c.board.ClearTokens()
	for _, p := range c.players {
		p.ClearSelectionState()
	}

	returned := 0
	for slot := 0; slot < c.board.Size(); slot++ {
		card, holders, ok := c.board.RemoveCard(slot)
		if !ok {
			continue
		}
		c.deck.Return(card)
		returned++
		for _, id := range holders {
			c.players[id].ClearSelectionState(slot)
		}
	}

	log.Info().
		Str("game_id", c.gameID.String()).
		Int("round", c.round).
		Int("returned", returned).
		Int("deck_size", c.deck.Len()).
		Msg("table cleared")
	c.em.Reshuffle(c.round, returned)
}

// updateTimerDisplay refreshes the table timer. With reset it restarts the
// countdown (or the elapsed clock in the untimed modes).
func (c *Coordinator) updateTimerDisplay(reset bool) {
	now := c.clock.Now()
	timeout := c.cfg.TurnTimeout

	if reset {
		c.roundStart = now
		c.deadline = now.Add(timeout)
		c.lastShown = -1
	}

	switch {
	case timeout > 0:
		remaining := c.deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		warn := remaining <= c.cfg.TurnTimeoutWarning
		// Whole seconds normally, hundredths once the warning kicks in.
		shown := remaining.Truncate(time.Second)
		if warn {
			shown = remaining.Truncate(10 * time.Millisecond)
		}
		if shown == c.lastShown {
			return
		}
		c.lastShown = shown
		c.em.Countdown(remaining, warn)
	case timeout == 0:
		elapsed := now.Sub(c.roundStart).Truncate(time.Second)
		if elapsed == c.lastShown {
			return
		}
		c.lastShown = elapsed
		c.em.Elapsed(elapsed)
	}
}

// Deadline is the instant the current countdown expires.
func (c *Coordinator) Deadline() time.Time {
	return c.deadline
}

func (c *Coordinator) showHints() {
	cards := c.board.Cards()
	for _, set := range c.rules.FindSets(cards, 0) {
		slots := make([]int, 0, len(set))
		for _, card := range set {
			if s, ok := c.board.SlotOf(card); ok {
				slots = append(slots, s)
			}
		}
		log.Info().Ints("cards", set).Ints("slots", slots).Msg("hint")
		c.em.Hint(set, slots)
	}
}

// sleep pauses for d unless ctx ends first.
func (c *Coordinator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-c.clock.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
