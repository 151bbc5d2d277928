package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// runComputer presses a uniformly random slot every ComputerDelay, skipping
// while a claim or freeze is in flight.
func (p *Player) runComputer(ctx context.Context) {
	rng := rand.New(rand.NewSource(p.seed))
	delay := p.settings.ComputerDelay
	if delay <= 0 {
		delay = time.Second
	}

	log.Debug().Int("player_id", p.ID).Dur("delay", delay).Msg("computer input started")

	ticker := p.clock.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("player_id", p.ID).Msg("computer input stopped")
			return
		case <-ticker.Chan():
			if p.busy() || p.settings.TableSize <= 0 {
				continue
			}
			p.Press(rng.Intn(p.settings.TableSize))
		}
	}
}
