package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/setrush/go/internal/config"
	"github.com/mcdev12/setrush/go/internal/game"
	"github.com/mcdev12/setrush/go/internal/game/events"
)

type stubState struct {
	state *GameState
	err   error
}

func (s stubState) GameState(context.Context) (*GameState, error) {
	return s.state, s.err
}

func startGateway(t *testing.T, provider StateProvider) (*Service, *httptest.Server) {
	t.Helper()
	svc := NewService(DefaultConfig(), provider)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Start(ctx)
	}()
	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})
	return svc, srv
}

func TestSpectatorReceivesEvents(t *testing.T) {
	svc, srv := startGateway(t, stubState{})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game?viewer=alice"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return svc.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	gameID := uuid.New()
	em := events.NewEmitter(gameID, svc)
	em.Score(2, 7)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got events.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, events.TypeScore, got.Type)
	assert.Equal(t, gameID.String(), got.GameID)

	payload, err := events.ParsePayload(&got)
	require.NoError(t, err)
	assert.Equal(t, &events.ScorePayload{PlayerID: 2, Score: 7}, payload)
}

func TestPublishWithoutSpectatorsDoesNotBlock(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.BroadcastBuffer = 1
	cm := NewConnectionManager(cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			cm.Publish(events.Event{Type: events.TypeCountdown})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full broadcast buffer")
	}
}

func TestStateEndpoint(t *testing.T) {
	card := 4
	_, srv := startGateway(t, stubState{state: &GameState{
		GameID: "g",
		Status: "running",
		Slots:  []SlotState{{Slot: 0, Card: &card, Holders: []int{1}}, {Slot: 1}},
	}})

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "running", got.Status)
	require.Len(t, got.Slots, 2)
	assert.Equal(t, 4, *got.Slots[0].Card)
	assert.Nil(t, got.Slots[1].Card)
}

func TestStateEndpointErrors(t *testing.T) {
	_, srv := startGateway(t, stubState{err: errors.New("boom")})

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/state", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSHeaders(t *testing.T) {
	_, srv := startGateway(t, stubState{state: &GameState{}})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://spectator.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCoordinatorStateProvider(t *testing.T) {
	cfg := config.Default()
	cfg.HumanPlayers = 1
	cfg.ComputerPlayers = 1
	c, err := game.New(cfg)
	require.NoError(t, err)

	state, err := NewCoordinatorStateProvider(c).GameState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, c.GameID().String(), state.GameID)
	assert.Equal(t, "dealing", state.Status)
	require.Len(t, state.Slots, cfg.TableSize)
	for _, s := range state.Slots {
		assert.Nil(t, s.Card)
	}
	require.Len(t, state.Players, 2)
	assert.True(t, state.Players[0].Human)
	assert.Equal(t, "player-1", state.Players[0].Name)
	assert.False(t, state.Players[1].Human)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewCoordinatorStateProvider(c).GameState(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
