package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/setrush/go/internal/config"
	"github.com/mcdev12/setrush/go/internal/game"
	"github.com/mcdev12/setrush/go/internal/game/events"
	"github.com/mcdev12/setrush/go/internal/game/gateway"
	"github.com/mcdev12/setrush/go/internal/game/publisher"
)

// Services is everything the binary runs for one game.
type Services struct {
	Coordinator *game.Coordinator
	Gateway     *gateway.Service     // nil unless gateway_addr is set
	Publisher   *publisher.Publisher // nil unless nats_url is set
}

// setupServices builds the display sinks first and hands them to the coordinator.
func setupServices(ctx context.Context, cfg config.Config, seed int64) (*Services, error) {
	s := &Services{}
	sinks := events.Fanout{events.NewLogSink()}

	if cfg.NATSURL != "" {
		pubCfg := publisher.DefaultConfig()
		pubCfg.URL = cfg.NATSURL
		pub, err := publisher.Connect(ctx, pubCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to set up event publisher: %w", err)
		}
		s.Publisher = pub
		sinks = append(sinks, pub)
		log.Info().Str("nats_url", cfg.NATSURL).Msg("event publisher connected")
	}

	if cfg.GatewayAddr != "" {
		s.Gateway = gateway.NewService(gateway.DefaultConfig(), gateway.StateProviderFunc(s.gameState))
		sinks = append(sinks, s.Gateway)
	}

	opts := []game.Option{game.WithSink(sinks)}
	if seed != 0 {
		opts = append(opts, game.WithSeed(seed))
	}
	c, err := game.New(cfg, opts...)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	s.Coordinator = c
	return s, nil
}

func (s *Services) gameState(ctx context.Context) (*gateway.GameState, error) {
	if s.Coordinator == nil {
		return nil, fmt.Errorf("game not started")
	}
	return gateway.NewCoordinatorStateProvider(s.Coordinator).GameState(ctx)
}

// Close releases external connections.
func (s *Services) Close() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}
}
