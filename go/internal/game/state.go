package game

import "errors"

// ErrInvalidState marks a broken coordination invariant. It is logged, never tolerated silently.
var ErrInvalidState = errors.New("invalid state")

// RoundState is the coordinator's phase. Players accept selections only while Running.
type RoundState int32

const (
	Dealing RoundState = iota
	Running
	Shutdown
)

func (s RoundState) String() string {
	switch s {
	case Dealing:
		return "dealing"
	case Running:
		return "running"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Gate tells players whether selections are currently allowed.
type Gate interface {
	AcceptingSelections() bool
}

type playerState int

const (
	stateIdle playerState = iota
	stateAwaiting
	statePointPending
	statePenaltyPending
)

func (s playerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaiting:
		return "awaiting_adjudication"
	case statePointPending:
		return "point_pending"
	case statePenaltyPending:
		return "penalty_pending"
	default:
		return "unknown"
	}
}
