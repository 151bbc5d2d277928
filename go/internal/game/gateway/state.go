package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/setrush/go/internal/game"
)

// StateProvider returns a point-in-time view of the game for clients that
// join mid-game and need to catch up before following the event stream.
type StateProvider interface {
	GameState(ctx context.Context) (*GameState, error)
}

// StateProviderFunc adapts a function to StateProvider.
type StateProviderFunc func(ctx context.Context) (*GameState, error)

func (f StateProviderFunc) GameState(ctx context.Context) (*GameState, error) {
	return f(ctx)
}

// GameState is the snapshot served by GET /state.
type GameState struct {
	GameID     string        `json:"game_id"`
	Status     string        `json:"status"`
	Slots      []SlotState   `json:"slots"`
	Players    []PlayerState `json:"players"`
	ServerTime time.Time     `json:"server_time"`
}

type SlotState struct {
	Slot    int   `json:"slot"`
	Card    *int  `json:"card"`
	Holders []int `json:"holders,omitempty"`
}

type PlayerState struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Human    bool   `json:"human"`
	Score    int    `json:"score"`
	Frozen   bool   `json:"frozen"`
	Claiming bool   `json:"claiming"`
}

// CoordinatorStateProvider reads the state straight from a running coordinator.
// Every field it touches is safe to read from outside the coordinator goroutine.
type CoordinatorStateProvider struct {
	coordinator *game.Coordinator
}

func NewCoordinatorStateProvider(c *game.Coordinator) *CoordinatorStateProvider {
	return &CoordinatorStateProvider{coordinator: c}
}

func (p *CoordinatorStateProvider) GameState(ctx context.Context) (*GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := p.coordinator
	b := c.Board()

	state := &GameState{
		GameID:     c.GameID().String(),
		Status:     c.State().String(),
		Slots:      make([]SlotState, 0, b.Size()),
		ServerTime: time.Now(),
	}
	for s := 0; s < b.Size(); s++ {
		slot := SlotState{Slot: s, Holders: b.TokenHolders(s)}
		if card, ok := b.CardAt(s); ok {
			slot.Card = &card
		}
		state.Slots = append(state.Slots, slot)
	}
	for _, pl := range c.Players() {
		state.Players = append(state.Players, PlayerState{
			ID:       pl.ID,
			Name:     pl.Name,
			Human:    pl.Human(),
			Score:    pl.Score(),
			Frozen:   pl.Frozen(),
			Claiming: pl.AwaitingAdjudication(),
		})
	}
	return state, nil
}

// StateHandler serves game snapshots over HTTP.
type StateHandler struct {
	stateProvider StateProvider
}

func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{stateProvider: provider}
}

func (h *StateHandler) HandleGameState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, err := h.stateProvider.GameState(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to get game state")
		http.Error(w, "failed to get game state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Error().Err(err).Msg("failed to encode game state")
	}
}

func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/state", h.HandleGameState)
}
