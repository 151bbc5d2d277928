// Package gateway streams game events to websocket spectators and serves
// game snapshots over HTTP.
package gateway

import (
	"context"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/setrush/go/internal/game/events"
)

// Config holds configuration for the gateway service.
type Config struct {
	ConnectionConfig ConnectionConfig
	AllowedOrigins   []string
}

func DefaultConfig() Config {
	return Config{
		ConnectionConfig: DefaultConnectionConfig(),
		AllowedOrigins:   []string{"*"},
	}
}

// Service is the spectator gateway. It is an events.Sink.
type Service struct {
	config            Config
	connectionManager *ConnectionManager
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

var _ events.Sink = (*Service)(nil)

func NewService(config Config, stateProvider StateProvider) *Service {
	cm := NewConnectionManager(config.ConnectionConfig)
	return &Service{
		config:            config,
		connectionManager: cm,
		wsHandler:         NewWebSocketHandler(cm),
		stateHandler:      NewStateHandler(stateProvider),
	}
}

// Start broadcasts events until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting game gateway")
	s.connectionManager.Start(ctx)
	log.Info().Msg("game gateway stopped")
}

// Publish implements events.Sink.
func (s *Service) Publish(ev events.Event) {
	s.connectionManager.Publish(ev)
}

func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns every gateway route behind CORS, accepting cleartext HTTP/2.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodHead, http.MethodGet},
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})
	return h2c.NewHandler(c.Handler(mux), &http2.Server{})
}

// ConnectionCount returns the number of connected spectators.
func (s *Service) ConnectionCount() int {
	return s.connectionManager.ConnectionCount()
}
