package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/setrush/go/internal/game"
	"github.com/mcdev12/setrush/go/internal/game/events"
)

type fakeKeyboard struct {
	mu         sync.Mutex
	presses    [][2]int
	terminated bool
}

func (k *fakeKeyboard) Press(playerID, slot int) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.presses = append(k.presses, [2]int{playerID, slot})
	return true
}

func (k *fakeKeyboard) Terminate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.terminated = true
}

func TestParsePress(t *testing.T) {
	tests := []struct {
		line    string
		player  int
		slot    int
		wantErr bool
	}{
		{line: "0 5", player: 0, slot: 5},
		{line: "  1\t11 ", player: 1, slot: 11},
		{line: "1", wantErr: true},
		{line: "a 2", wantErr: true},
		{line: "1 b", wantErr: true},
		{line: "1 2 3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			player, slot, err := parsePress(tt.line)
			if tt.wantErr {
				require.ErrorIs(t, err, errBadInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.player, player)
			assert.Equal(t, tt.slot, slot)
		})
	}
}

func TestReadInput(t *testing.T) {
	kb := &fakeKeyboard{}
	in := strings.NewReader("0 1\n\nnonsense\n1 4\nquit\n0 2\n")

	require.NoError(t, readInput(in, kb))
	assert.Equal(t, [][2]int{{0, 1}, {1, 4}}, kb.presses)
	assert.True(t, kb.terminated)
}

func TestReadInputEOF(t *testing.T) {
	kb := &fakeKeyboard{}
	require.NoError(t, readInput(strings.NewReader("2 3"), kb))
	assert.Equal(t, [][2]int{{2, 3}}, kb.presses)
	assert.False(t, kb.terminated)
}

func TestParseFlags(t *testing.T) {
	f, err := parseFlags([]string{"-config", "game.yaml", "-seed", "9"})
	require.NoError(t, err)
	assert.Equal(t, "game.yaml", f.configPath)
	assert.Equal(t, int64(9), f.seed)

	_, err = parseFlags([]string{"-bogus"})
	require.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	em := events.NewEmitter(uuid.Nil, nil)
	players := []*game.Player{
		game.NewPlayer(0, "ana", true, nil, nil, nil, em, nil, game.PlayerSettings{}, 1),
		game.NewPlayer(1, "bo", true, nil, nil, nil, em, nil, game.PlayerSettings{}, 2),
	}

	var buf bytes.Buffer
	printResult(&buf, players, []int{1})
	assert.Contains(t, buf.String(), "winner: bo")

	buf.Reset()
	printResult(&buf, players, []int{0, 1})
	assert.Contains(t, buf.String(), "draw: ana, bo")
	assert.Contains(t, buf.String(), "ana          0")
}
