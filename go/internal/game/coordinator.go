package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/setrush/go/internal/config"
	"github.com/mcdev12/setrush/go/internal/game/board"
	"github.com/mcdev12/setrush/go/internal/game/events"
	"github.com/mcdev12/setrush/go/internal/game/rules"
)

/*
ROUND LIFECYCLE:
1. Dealing  - empty slots are filled from the shuffled deck and the countdown restarts
2. Running  - wake on a new claim or every tick; refresh the countdown, adjudicate
              at most one claim, top the board up
3. Countdown expiry returns every card to the deck and goes back to Dealing
4. Shutdown - players are stopped and joined, winners announced

Players read the round state before every selection; nothing else on the
coordinator is shared with them.
*/

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithRules replaces the feature rule derived from the config.
func WithRules(r rules.Rules) Option {
	return func(c *Coordinator) { c.rules = r }
}

// WithSink sends display events to sink.
func WithSink(sink events.Sink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

// WithSeed makes dealing and computer input reproducible.
func WithSeed(seed int64) Option {
	return func(c *Coordinator) { c.seed = seed }
}

// Coordinator owns the deck and the countdown, adjudicates claims and is the
// only remover of cards from the board.
type Coordinator struct {
	gameID  uuid.UUID
	cfg     config.Config
	rules   rules.Rules
	clock   clockwork.Clock
	sink    events.Sink
	em      *events.Emitter
	seed    int64
	rng     *rand.Rand
	board   *board.Board
	deck    *Deck
	claims  *ClaimQueue
	players []*Player

	state atomic.Int32

	// Owned by the coordinator goroutine.
	round      int
	deadline   time.Time
	roundStart time.Time
	lastShown  time.Duration
	finished   bool
	idle       clockwork.Timer

	stopOnce sync.Once
	stop     chan struct{}
}

// New validates cfg and builds the board, deck, claim queue and players.
// Human players take the lowest ids.
func New(cfg config.Config, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		gameID: uuid.New(),
		cfg:    cfg,
		clock:  clockwork.NewRealClock(),
		seed:   time.Now().UnixNano(),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules == nil {
		if cfg.FeatureSize <= 0 || cfg.FeatureCount <= 0 {
			return nil, fmt.Errorf("%w: feature rule needs feature_size and feature_count", config.ErrInvalidConfig)
		}
		c.rules = rules.NewFeatures(cfg.FeatureSize, cfg.FeatureCount)
	}

	c.em = events.NewEmitter(c.gameID, c.sink)
	c.em.Now = c.clock.Now
	c.rng = rand.New(rand.NewSource(c.seed))
	c.board = board.New(cfg.TableSize, cfg.DeckSize, c.em)
	c.deck = NewDeck(cfg.DeckSize, c.rng)
	c.claims = NewClaimQueue(cfg.Players())
	c.state.Store(int32(Dealing))

	settings := PlayerSettings{
		TableSize:     cfg.TableSize,
		PointFreeze:   cfg.PointFreeze,
		PenaltyFreeze: cfg.PenaltyFreeze,
		FreezeTick:    cfg.FreezeTick,
		ComputerDelay: cfg.ComputerDelay,
	}
	for id := 0; id < cfg.Players(); id++ {
		human := id < cfg.HumanPlayers
		c.players = append(c.players, NewPlayer(id, cfg.PlayerName(id), human, c.board, c.claims, c, c.em, c.clock, settings, c.seed+int64(id)+1))
	}
	return c, nil
}

func (c *Coordinator) GameID() uuid.UUID { return c.gameID }

func (c *Coordinator) Board() *board.Board { return c.board }

func (c *Coordinator) Players() []*Player { return c.players }

func (c *Coordinator) Claims() *ClaimQueue { return c.claims }

// DeckSize is the number of undealt cards. Only safe once Run has returned
// or from the coordinator goroutine.
func (c *Coordinator) DeckSize() int { return c.deck.Len() }

func (c *Coordinator) State() RoundState { return RoundState(c.state.Load()) }

func (c *Coordinator) setState(s RoundState) { c.state.Store(int32(s)) }

// AcceptingSelections implements Gate.
func (c *Coordinator) AcceptingSelections() bool { return c.State() == Running }

// Player returns the player with the given id.
func (c *Coordinator) Player(id int) (*Player, bool) {
	if id < 0 || id >= len(c.players) {
		return nil, false
	}
	return c.players[id], true
}

// Press routes a key press to a human player. Computer players and unknown
// ids are rejected.
func (c *Coordinator) Press(playerID, slot int) bool {
	p, ok := c.Player(playerID)
	if !ok || !p.Human() {
		return false
	}
	return p.Press(slot)
}

// Terminate asks Run to finish the current step, stop every player and announce the winners.
func (c *Coordinator) Terminate() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Run plays the game until no set is left or the game is terminated, then
// joins every player and announces the winners, which it also returns.
func (c *Coordinator) Run(ctx context.Context) []int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Info().
		Str("game_id", c.gameID.String()).
		Int("players", len(c.players)).
		Int("table_size", c.cfg.TableSize).
		Int("deck_size", c.deck.Len()).
		Msg("coordinator started")

	playerCtx, stopPlayers := context.WithCancel(ctx)
	var g errgroup.Group
	for _, p := range c.players {
		p := p
		g.Go(func() error {
			p.Run(playerCtx)
			return nil
		})
	}

	c.idle = c.clock.NewTimer(c.cfg.TickInterval)
	defer c.idle.Stop()

	for !c.shouldFinish(ctx) {
		c.round++
		c.placeCards(ctx)
		c.timerLoop(ctx)
		if ctx.Err() == nil {
			c.updateTimerDisplay(false)
		}
		c.removeAllCards()
	}

	c.setState(Shutdown)
	log.Info().Str("game_id", c.gameID.String()).Int("rounds", c.round).Msg("shutting down players")
	stopPlayers()
	_ = g.Wait()
	log.Info().Str("game_id", c.gameID.String()).Msg("all players stopped")

	return c.announceWinners()
}

// shouldFinish reports whether the game is over: terminated, or no set left
// among the live cards (undealt plus on the board).
func (c *Coordinator) shouldFinish(ctx context.Context) bool {
	if ctx.Err() != nil || c.finished {
		return true
	}
	return !c.liveSetExists()
}

func (c *Coordinator) liveSetExists() bool {
	live := append(c.deck.Cards(), c.board.Cards()...)
	return rules.CountSets(c.rules, live, 1) > 0
}

// timerLoop runs one round until the countdown expires, the board runs out
// of sets in the untimed modes, or the game ends.
func (c *Coordinator) timerLoop(ctx context.Context) {
	c.setState(Running)
	for ctx.Err() == nil && !c.finished && !c.roundOver() {
		c.sleepUntilWokenOrTimeout(ctx)
		c.updateTimerDisplay(false)
		c.adjudicateNext(ctx)
		c.placeCards(ctx)
	}
}

func (c *Coordinator) roundOver() bool {
	if c.cfg.TurnTimeout > 0 {
		return !c.clock.Now().Before(c.deadline)
	}
	return rules.CountSets(c.rules, c.board.Cards(), 1) == 0
}

// sleepUntilWokenOrTimeout waits one tick, a new claim, or shutdown, whichever comes first.
func (c *Coordinator) sleepUntilWokenOrTimeout(ctx context.Context) {
	wait := c.cfg.TickInterval
	if c.cfg.TurnTimeout > 0 {
		if left := c.deadline.Sub(c.clock.Now()); left < wait {
			wait = left
		}
	}
	if wait <= 0 || c.claims.Len() > 0 {
		return
	}
	stopAndDrainTimer(c.idle)
	c.idle.Reset(wait)

	select {
	case <-c.idle.Chan():
	case <-c.claims.Ready():
	case <-ctx.Done():
	}
}

// stopAndDrainTimer stops a timer and empties its channel so Reset starts clean.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
