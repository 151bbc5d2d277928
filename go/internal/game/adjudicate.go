package game

import (
	"context"

	"github.com/rs/zerolog/log"
)

// adjudicateNext resolves the oldest pending claim, if any. Claims withdrawn
// since they were queued are skipped.
func (c *Coordinator) adjudicateNext(ctx context.Context) {
	p, ok := c.claims.Poll()
	if !ok {
		return
	}
	if !p.AwaitingAdjudication() {
		log.Debug().Int("player_id", p.ID).Msg("skipping withdrawn claim")
		return
	}

	cards, err := p.CurrentSelectionAsCards()
	if err != nil {
		log.Error().Err(err).Int("player_id", p.ID).Msg("claim has no readable selection")
		p.ClearSelectionState()
		return
	}

	if !c.rules.IsSet(cards) {
		log.Info().Int("player_id", p.ID).Ints("cards", cards).Msg("claim rejected")
		if err := p.ApplyPenalty(); err != nil {
			log.Error().Err(err).Int("player_id", p.ID).Msg("failed to apply penalty")
		}
		return
	}

	log.Info().Int("player_id", p.ID).Ints("cards", cards).Msg("claim accepted")

	c.setState(Dealing)
	c.removeSet(p, cards)
	if err := p.AwardPoint(); err != nil {
		log.Error().Err(err).Int("player_id", p.ID).Msg("failed to award point")
	}
	c.placeCards(ctx)
	if !c.liveSetExists() {
		log.Info().Str("game_id", c.gameID.String()).Msg("no sets left among live cards")
		c.finished = true
	}
	c.setState(Running)
}

// removeSet clears the claimed cards from the board. Every other player
// holding a token on one of those slots loses that selection, and any claim
// of theirs is withdrawn.
func (c *Coordinator) removeSet(claimant *Player, cards []int) {
	for _, card := range cards {
		slot, ok := c.board.SlotOf(card)
		if !ok {
			log.Error().Int("card", card).Int("player_id", claimant.ID).Msg("claimed card is not on the board")
			continue
		}
		_, holders, _ := c.board.RemoveCard(slot)
		for _, id := range holders {
			if id == claimant.ID {
				continue
			}
			other, ok := c.Player(id)
			if !ok {
				continue
			}
			if other.AwaitingAdjudication() {
				log.Debug().Int("player_id", id).Int("slot", slot).Msg("claim invalidated by earlier set")
			}
			other.ClearSelectionState(slot)
		}
	}
}
