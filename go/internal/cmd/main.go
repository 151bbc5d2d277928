package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/setrush/go/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("setrush failed")
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := setupServices(ctx, cfg, f.seed)
	if err != nil {
		return err
	}
	defer services.Close()
	c := services.Coordinator

	log.Info().
		Str("game_id", c.GameID().String()).
		Int("human_players", cfg.HumanPlayers).
		Int("computer_players", cfg.ComputerPlayers).
		Str("gateway_addr", cfg.GatewayAddr).
		Msg("starting setrush")

	// Services outlive the game so the final events still reach them.
	svcCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	var g errgroup.Group

	if services.Gateway != nil {
		server := setupServer(cfg.GatewayAddr, services.Gateway)
		g.Go(func() error {
			services.Gateway.Start(svcCtx)
			return nil
		})
		g.Go(func() error {
			log.Info().Str("addr", server.Addr).Msg("gateway server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("gateway server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-svcCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	if services.Publisher != nil {
		g.Go(func() error {
			services.Publisher.Run(svcCtx)
			return nil
		})
	}

	if cfg.HumanPlayers > 0 {
		// Reads on stdin cannot be interrupted, so this goroutine is not joined.
		go func() {
			if err := readInput(stdin, c); err != nil {
				log.Error().Err(err).Msg("input reader stopped")
			}
		}()
	}

	winners := c.Run(ctx)
	printResult(stdout, c.Players(), winners)

	stopServices()
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Str("game_id", c.GameID().String()).Msg("setrush shutdown complete")
	return nil
}
