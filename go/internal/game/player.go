package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/setrush/go/internal/game/board"
	"github.com/mcdev12/setrush/go/internal/game/events"
)

const (
	// maxSelection is the size of a claim.
	maxSelection = 3
	// pressQueueSize bounds key presses waiting for the player goroutine.
	pressQueueSize = 3
)

// PlayerSettings are the timing knobs a player needs.
type PlayerSettings struct {
	TableSize     int
	PointFreeze   time.Duration
	PenaltyFreeze time.Duration
	FreezeTick    time.Duration
	ComputerDelay time.Duration
}

type verdict int

const (
	verdictPoint verdict = iota
	verdictPenalty
)

// Player is one participant. It is the only writer of its own selection and
// of its tokens on the board; the coordinator resolves its claims through
// AwardPoint, ApplyPenalty and ClearSelectionState.
type Player struct {
	ID    int
	Name  string
	human bool

	board    *board.Board
	claims   *ClaimQueue
	gate     Gate
	em       *events.Emitter
	clock    clockwork.Clock
	settings PlayerSettings
	seed     int64

	mu        sync.Mutex
	score     int
	selection []int
	state     playerState

	presses  chan int
	verdicts chan verdict
}

// NewPlayer wires a player to the shared board and claim queue. seed drives
// the automated input of computer players.
func NewPlayer(id int, name string, human bool, b *board.Board, claims *ClaimQueue, gate Gate, em *events.Emitter, clock clockwork.Clock, settings PlayerSettings, seed int64) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Player{
		ID:       id,
		Name:     name,
		human:    human,
		board:    b,
		claims:   claims,
		gate:     gate,
		em:       em,
		clock:    clock,
		settings: settings,
		seed:     seed,
		presses:  make(chan int, pressQueueSize),
		verdicts: make(chan verdict, 1),
	}
}

func (p *Player) Human() bool {
	return p.human
}

func (p *Player) Score() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.score
}

// Selection returns the selected slots in selection order.
func (p *Player) Selection() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, len(p.selection))
	copy(out, p.selection)
	return out
}

// AwaitingAdjudication reports whether the player has a claim in flight.
func (p *Player) AwaitingAdjudication() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateAwaiting
}

// Frozen reports whether a point or penalty freeze is pending or running.
func (p *Player) Frozen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == statePointPending || p.state == statePenaltyPending
}

// busy reports whether key presses would be rejected right now.
func (p *Player) busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != stateIdle
}

// Press queues a key press for the player goroutine. It drops the press and
// returns false when the queue is full.
func (p *Player) Press(slot int) bool {
	select {
	case p.presses <- slot:
		return true
	default:
		return false
	}
}

// SubmitSelection toggles slot in the player's selection. It returns false
// when the press was rejected: the player is frozen or awaiting a verdict,
// the table is being dealt, the slot is empty, or three slots are already
// selected. Completing a third selection publishes a claim.
func (p *Player) SubmitSelection(slot int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateIdle {
		return false
	}
	if p.gate != nil && !p.gate.AcceptingSelections() {
		return false
	}

	if i := indexOf(p.selection, slot); i >= 0 {
		p.board.RemoveToken(p.ID, slot)
		p.selection = append(p.selection[:i], p.selection[i+1:]...)
		return true
	}

	if len(p.selection) >= maxSelection {
		return false
	}
	if !p.board.PlaceToken(p.ID, slot) {
		return false
	}
	p.selection = append(p.selection, slot)

	if len(p.selection) == maxSelection {
		p.state = stateAwaiting
		if err := p.claims.Publish(p); err != nil {
			log.Error().Err(err).Int("player_id", p.ID).Msg("failed to publish claim")
		}
	}
	return true
}

// CurrentSelectionAsCards returns the cards under the player's three tokens, in selection order.
func (p *Player) CurrentSelectionAsCards() ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.selection) != maxSelection {
		return nil, fmt.Errorf("%w: player %d holds %d selections", ErrInvalidState, p.ID, len(p.selection))
	}
	cards := make([]int, 0, maxSelection)
	for _, s := range p.selection {
		card, ok := p.board.CardAt(s)
		if !ok {
			return nil, fmt.Errorf("%w: player %d selected empty slot %d", ErrInvalidState, p.ID, s)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// AwardPoint credits a validated set. The claimed slots have already been
// cleared from the board, so the selection is dropped.
func (p *Player) AwardPoint() error {
	p.mu.Lock()
	if p.state != stateAwaiting {
		st := p.state
		p.mu.Unlock()
		return fmt.Errorf("%w: point for player %d in state %s", ErrInvalidState, p.ID, st)
	}
	p.score++
	score := p.score
	p.selection = p.selection[:0]
	p.state = statePointPending
	p.mu.Unlock()

	p.em.Score(p.ID, score)
	p.deliver(verdictPoint)
	return nil
}

// ApplyPenalty rejects a claim. The score and the player's tokens stay as they are.
func (p *Player) ApplyPenalty() error {
	p.mu.Lock()
	if p.state != stateAwaiting {
		st := p.state
		p.mu.Unlock()
		return fmt.Errorf("%w: penalty for player %d in state %s", ErrInvalidState, p.ID, st)
	}
	p.state = statePenaltyPending
	p.mu.Unlock()

	p.deliver(verdictPenalty)
	return nil
}

// ClearSelectionState forgets the given slots, whose cards and tokens the
// coordinator has already removed. With no slots it drops the whole
// selection and lifts its tokens. Either way a pending claim is withdrawn
// without a point or a penalty.
func (p *Player) ClearSelectionState(slots ...int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(slots) == 0 {
		for _, s := range p.selection {
			p.board.RemoveToken(p.ID, s)
		}
		p.selection = p.selection[:0]
	} else {
		for _, s := range slots {
			if i := indexOf(p.selection, s); i >= 0 {
				p.selection = append(p.selection[:i], p.selection[i+1:]...)
			}
		}
	}

	if p.state == stateAwaiting {
		p.state = stateIdle
		p.claims.Remove(p)
	}
}

func (p *Player) deliver(v verdict) {
	select {
	case p.verdicts <- v:
	default:
		log.Error().Int("player_id", p.ID).Msg("verdict dropped: previous verdict still pending")
	}
}

// Run consumes key presses and serves freezes until ctx is cancelled.
// Computer players also run their input companion, which Run joins before returning.
func (p *Player) Run(ctx context.Context) {
	log.Info().Int("player_id", p.ID).Str("name", p.Name).Bool("human", p.human).Msg("player started")

	var wg sync.WaitGroup
	if !p.human {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runComputer(ctx)
		}()
	}
	defer func() {
		wg.Wait()
		log.Info().Int("player_id", p.ID).Msg("player stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case slot := <-p.presses:
			p.SubmitSelection(slot)
		case v := <-p.verdicts:
			p.serve(ctx, v)
		}
	}
}

func (p *Player) serve(ctx context.Context, v verdict) {
	d := p.settings.PointFreeze
	if v == verdictPenalty {
		d = p.settings.PenaltyFreeze
	}

	if !p.freeze(ctx, d) {
		return
	}

	p.mu.Lock()
	p.state = stateIdle
	p.mu.Unlock()
}

// freeze blocks for d, reporting the remaining time every freeze tick and
// discarding key presses. It returns false if ctx was cancelled first.
func (p *Player) freeze(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		p.em.Freeze(p.ID, 0)
		return true
	}

	deadline := p.clock.Now().Add(d)
	p.em.Freeze(p.ID, d)

	timer := p.clock.NewTimer(d)
	defer timer.Stop()
	tick := p.settings.FreezeTick
	if tick <= 0 {
		tick = time.Second
	}
	ticker := p.clock.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timer.Chan():
			p.em.Freeze(p.ID, 0)
			return true
		case <-ticker.Chan():
			p.em.Freeze(p.ID, deadline.Sub(p.clock.Now()))
		case <-p.presses:
		}
	}
}

func indexOf(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
