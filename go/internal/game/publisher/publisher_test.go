package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/setrush/go/internal/game/events"
)

type published struct {
	subject string
	data    []byte
}

type fakeStream struct {
	mu   sync.Mutex
	msgs []published
	fail bool
}

func (f *fakeStream) Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("no responders")
	}
	f.msgs = append(f.msgs, published{subject: subject, data: payload})
	return &jetstream.PubAck{Stream: "SETRUSH_EVENTS", Sequence: uint64(len(f.msgs))}, nil
}

func (f *fakeStream) sent() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func TestRunPublishesBySubject(t *testing.T) {
	js := &fakeStream{}
	p := New(js, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	gameID := uuid.New()
	em := events.NewEmitter(gameID, p)
	em.CardPlaced(3, 17)
	em.GameOver([]int{1}, map[int]int{0: 2, 1: 4})

	require.Eventually(t, func() bool { return len(js.sent()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	msgs := js.sent()
	assert.Equal(t, "setrush.events.CardPlaced", msgs[0].subject)
	assert.Equal(t, "setrush.events.GameOver", msgs[1].subject)

	var ev events.Event
	require.NoError(t, json.Unmarshal(msgs[1].data, &ev))
	assert.Equal(t, gameID.String(), ev.GameID)
	payload, err := events.ParsePayload(&ev)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, payload.(*events.GameOverPayload).Winners)
}

func TestRunFlushesOnShutdown(t *testing.T) {
	js := &fakeStream{}
	p := New(js, DefaultConfig())
	for i := 0; i < 5; i++ {
		p.Publish(events.Event{ID: uuid.NewString(), Type: events.TypeCountdown})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)

	assert.Len(t, js.sent(), 5)
}

func TestPublishDropsWhenFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Buffer = 2
	js := &fakeStream{}
	p := New(js, cfg)

	for i := 0; i < 4; i++ {
		p.Publish(events.Event{Type: events.TypeFreeze})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)
	assert.Len(t, js.sent(), 2)
}

func TestFailedPublishIsSkipped(t *testing.T) {
	js := &fakeStream{fail: true}
	p := New(js, DefaultConfig())
	p.Publish(events.Event{Type: events.TypeScore})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Run(ctx)

	assert.Empty(t, js.sent())
	assert.NoError(t, p.Close())
}

func TestSubject(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SubjectPrefix = "arena.table1"
	p := New(&fakeStream{}, cfg)
	assert.Equal(t, "arena.table1.Reshuffle", p.Subject(events.Event{Type: events.TypeReshuffle}))
}
