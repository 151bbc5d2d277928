package events

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogSink writes events to the zerolog logger. Board and timer chatter goes
// to debug; scores, rounds and results go to info.
type LogSink struct {
	Logger zerolog.Logger
}

// NewLogSink returns a LogSink on the global logger.
func NewLogSink() *LogSink {
	return &LogSink{Logger: log.Logger}
}

func (s *LogSink) Publish(ev Event) {
	var e *zerolog.Event
	switch ev.Type {
	case TypeScore, TypeRoundStarted, TypeReshuffle, TypeGameOver, TypeHint:
		e = s.Logger.Info()
	default:
		e = s.Logger.Debug()
	}
	e.Str("game_id", ev.GameID).
		Str("event_type", string(ev.Type)).
		RawJSON("data", ev.Data).
		Msg("game event")
}
