package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var errBadInput = errors.New("expected \"<player> <slot>\" or \"quit\"")

// keyboard is what human input drives.
type keyboard interface {
	Press(playerID, slot int) bool
	Terminate()
}

// parsePress reads a "<player> <slot>" line.
func parsePress(line string) (player, slot int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, errBadInput
	}
	if player, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: bad player %q", errBadInput, fields[0])
	}
	if slot, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: bad slot %q", errBadInput, fields[1])
	}
	return player, slot, nil
}

// readInput turns lines from r into key presses until r is exhausted or a
// "quit" line ends the game.
func readInput(r io.Reader, kb keyboard) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			log.Info().Msg("quit requested")
			kb.Terminate()
			return nil
		}

		player, slot, err := parsePress(line)
		if err != nil {
			log.Warn().Err(err).Str("input", line).Msg("ignoring input")
			continue
		}
		if !kb.Press(player, slot) {
			log.Debug().Int("player_id", player).Int("slot", slot).Msg("key press dropped")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
