package game

import (
	"github.com/rs/zerolog/log"
)

// Winners returns every player tied at the highest score, in id order.
func Winners(players []*Player) []int {
	best := 0
	for _, p := range players {
		if s := p.Score(); s > best {
			best = s
		}
	}
	var winners []int
	for _, p := range players {
		if p.Score() == best {
			winners = append(winners, p.ID)
		}
	}
	return winners
}

func (c *Coordinator) announceWinners() []int {
	winners := Winners(c.players)
	scores := make(map[int]int, len(c.players))
	for _, p := range c.players {
		scores[p.ID] = p.Score()
	}

	log.Info().
		Str("game_id", c.gameID.String()).
		Ints("winners", winners).
		Interface("scores", scores).
		Msg("game over")
	c.em.GameOver(winners, scores)
	return winners
}
