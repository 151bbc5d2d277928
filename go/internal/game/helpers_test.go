package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/setrush/go/internal/config"
	"github.com/mcdev12/setrush/go/internal/game/events"
	"github.com/mcdev12/setrush/go/internal/game/rules"
)

// sumMod3 accepts any three cards whose ids add up to a multiple of three.
var sumMod3 = rules.Func(func(a, b, c int) bool { return (a+b+c)%3 == 0 })

// recorder captures display events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(t events.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) payloads(t events.Type) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interface{}
	for i := range r.events {
		if r.events[i].Type != t {
			continue
		}
		p, err := events.ParsePayload(&r.events[i])
		if err == nil {
			out = append(out, p)
		}
	}
	return out
}

type openGate bool

func (g openGate) AcceptingSelections() bool { return bool(g) }

// testConfig is a 4-slot table over cards 0..8 with two human players.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.HumanPlayers = 2
	cfg.ComputerPlayers = 0
	cfg.TableSize = 4
	cfg.FeatureSize = 0
	cfg.FeatureCount = 0
	cfg.DeckSize = 9
	cfg.TurnTimeout = time.Minute
	cfg.TurnTimeoutWarning = 5 * time.Second
	cfg.PointFreeze = time.Second
	cfg.PenaltyFreeze = 3 * time.Second
	cfg.TableDelay = 0
	cfg.TickInterval = 5 * time.Millisecond
	cfg.FreezeTick = time.Second
	return cfg
}

func newTestCoordinator(t *testing.T, cfg config.Config, opts ...Option) (*Coordinator, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithRules(sumMod3), WithSink(rec), WithSeed(42), WithClock(clockwork.NewFakeClock())}, opts...)
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	return c, rec
}

// layout deals the given cards into slots 0..n-1, bypassing the shuffle, and
// opens the table for selections.
func layout(t *testing.T, c *Coordinator, cards ...int) {
	t.Helper()
	remaining := c.deck.cards[:0]
	for _, card := range c.deck.Cards() {
		if indexOf(cards, card) < 0 {
			remaining = append(remaining, card)
		}
	}
	c.deck.cards = remaining
	for slot, card := range cards {
		require.NoError(t, c.board.PlaceCard(card, slot))
	}
	c.updateTimerDisplay(true)
	c.setState(Running)
}

func selectSlots(t *testing.T, p *Player, slots ...int) {
	t.Helper()
	for _, s := range slots {
		require.True(t, p.SubmitSelection(s), "player %d selecting slot %d", p.ID, s)
	}
}

func runPlayer(t *testing.T, p *Player) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}
