package events

import (
	"encoding/json"
	"time"
)

// Event payload types shared by the game engine and the display sinks

// CardPlacedPayload is the payload for a CardPlaced event
type CardPlacedPayload struct {
	Slot int `json:"slot"`
	Card int `json:"card"`
}

// CardRemovedPayload is the payload for a CardRemoved event
type CardRemovedPayload struct {
	Slot int `json:"slot"`
	Card int `json:"card"`
}

// TokenPayload is the payload for TokenPlaced and TokenRemoved events
type TokenPayload struct {
	PlayerID int `json:"player_id"`
	Slot     int `json:"slot"`
}

// TokensClearedPayload is the payload for a TokensCleared event.
// A nil Slot means every token on the board was cleared.
type TokensClearedPayload struct {
	Slot *int `json:"slot"`
}

// CountdownPayload carries the table timer shown to players
type CountdownPayload struct {
	RemainingMs int64 `json:"remaining_ms"`
	Warn        bool  `json:"warn"`
	Elapsed     bool  `json:"elapsed,omitempty"`
}

// FreezePayload carries a player's remaining freeze; zero means unfrozen
type FreezePayload struct {
	PlayerID    int   `json:"player_id"`
	RemainingMs int64 `json:"remaining_ms"`
}

// ScorePayload is the payload for a Score event
type ScorePayload struct {
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
}

// RoundStartedPayload is emitted once the board has been dealt for a new round
type RoundStartedPayload struct {
	Round         int       `json:"round"`
	CardsOnTable  int       `json:"cards_on_table"`
	DeckRemaining int       `json:"deck_remaining"`
	DeadlineAt    time.Time `json:"deadline_at,omitempty"`
}

// ReshufflePayload is emitted when every card on the board returns to the deck
type ReshufflePayload struct {
	Round    int `json:"round"`
	Returned int `json:"returned"`
}

// HintPayload lists one valid set currently on the table
type HintPayload struct {
	Cards []int `json:"cards"`
	Slots []int `json:"slots"`
}

// GameOverPayload announces the winners and final scores
type GameOverPayload struct {
	Winners []int       `json:"winners"`
	Scores  map[int]int `json:"scores"`
}

// ParsePayload decodes event data into the payload struct matching its type
func ParsePayload(event *Event) (interface{}, error) {
	var payload interface{}
	switch event.Type {
	case TypeCardPlaced:
		payload = &CardPlacedPayload{}
	case TypeCardRemoved:
		payload = &CardRemovedPayload{}
	case TypeTokenPlaced, TypeTokenRemoved:
		payload = &TokenPayload{}
	case TypeTokensCleared:
		payload = &TokensClearedPayload{}
	case TypeCountdown:
		payload = &CountdownPayload{}
	case TypeFreeze:
		payload = &FreezePayload{}
	case TypeScore:
		payload = &ScorePayload{}
	case TypeRoundStarted:
		payload = &RoundStartedPayload{}
	case TypeReshuffle:
		payload = &ReshufflePayload{}
	case TypeHint:
		payload = &HintPayload{}
	case TypeGameOver:
		payload = &GameOverPayload{}
	default:
		return nil, nil // Unknown event type
	}
	if err := json.Unmarshal(event.Data, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
