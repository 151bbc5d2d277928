package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Type represents the type of a game event
type Type string

const (
	TypeCardPlaced    Type = "CardPlaced"
	TypeCardRemoved   Type = "CardRemoved"
	TypeTokenPlaced   Type = "TokenPlaced"
	TypeTokenRemoved  Type = "TokenRemoved"
	TypeTokensCleared Type = "TokensCleared"
	TypeCountdown     Type = "Countdown"
	TypeFreeze        Type = "Freeze"
	TypeScore         Type = "Score"
	TypeRoundStarted  Type = "RoundStarted"
	TypeReshuffle     Type = "Reshuffle"
	TypeHint          Type = "Hint"
	TypeGameOver      Type = "GameOver"
)

// Event is the envelope every display update travels in
type Event struct {
	ID        string          `json:"id"`
	GameID    string          `json:"game_id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Sink receives game events. Publish must not block the caller: the board
// emits while holding slot locks.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// Fanout delivers every event to each of its sinks in order.
type Fanout []Sink

func (f Fanout) Publish(ev Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(ev)
		}
	}
}

// Emitter builds typed events for one game. A nil *Emitter or one with a nil
// sink drops everything.
type Emitter struct {
	GameID uuid.UUID
	Sink   Sink
	Now    func() time.Time
}

// NewEmitter returns an Emitter stamping events with the wall clock.
func NewEmitter(gameID uuid.UUID, sink Sink) *Emitter {
	return &Emitter{GameID: gameID, Sink: sink, Now: time.Now}
}

func (e *Emitter) emit(t Type, payload interface{}) {
	if e == nil || e.Sink == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to marshal event payload")
		return
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	e.Sink.Publish(Event{
		ID:        uuid.New().String(),
		GameID:    e.GameID.String(),
		Type:      t,
		Timestamp: now(),
		Data:      data,
	})
}

func (e *Emitter) CardPlaced(slot, card int) {
	e.emit(TypeCardPlaced, CardPlacedPayload{Slot: slot, Card: card})
}

func (e *Emitter) CardRemoved(slot, card int) {
	e.emit(TypeCardRemoved, CardRemovedPayload{Slot: slot, Card: card})
}

func (e *Emitter) TokenPlaced(playerID, slot int) {
	e.emit(TypeTokenPlaced, TokenPayload{PlayerID: playerID, Slot: slot})
}

func (e *Emitter) TokenRemoved(playerID, slot int) {
	e.emit(TypeTokenRemoved, TokenPayload{PlayerID: playerID, Slot: slot})
}

// TokensCleared reports that every token on slot was stripped.
func (e *Emitter) TokensCleared(slot int) {
	e.emit(TypeTokensCleared, TokensClearedPayload{Slot: &slot})
}

// AllTokensCleared reports that the whole board lost its tokens.
func (e *Emitter) AllTokensCleared() {
	e.emit(TypeTokensCleared, TokensClearedPayload{})
}

func (e *Emitter) Countdown(remaining time.Duration, warn bool) {
	e.emit(TypeCountdown, CountdownPayload{RemainingMs: remaining.Milliseconds(), Warn: warn})
}

func (e *Emitter) Elapsed(elapsed time.Duration) {
	e.emit(TypeCountdown, CountdownPayload{RemainingMs: elapsed.Milliseconds(), Elapsed: true})
}

func (e *Emitter) Freeze(playerID int, remaining time.Duration) {
	if remaining < 0 {
		remaining = 0
	}
	e.emit(TypeFreeze, FreezePayload{PlayerID: playerID, RemainingMs: remaining.Milliseconds()})
}

func (e *Emitter) Score(playerID, score int) {
	e.emit(TypeScore, ScorePayload{PlayerID: playerID, Score: score})
}

func (e *Emitter) RoundStarted(p RoundStartedPayload) {
	e.emit(TypeRoundStarted, p)
}

func (e *Emitter) Reshuffle(round, returned int) {
	e.emit(TypeReshuffle, ReshufflePayload{Round: round, Returned: returned})
}

func (e *Emitter) Hint(cards, slots []int) {
	e.emit(TypeHint, HintPayload{Cards: cards, Slots: slots})
}

func (e *Emitter) GameOver(winners []int, scores map[int]int) {
	if winners == nil {
		winners = []int{}
	}
	e.emit(TypeGameOver, GameOverPayload{Winners: winners, Scores: scores})
}
