package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcdev12/setrush/go/internal/game"
)

// printResult writes the final scores and the winner line.
func printResult(w io.Writer, players []*game.Player, winners []int) {
	for _, p := range players {
		fmt.Fprintf(w, "%-12s %d\n", p.Name, p.Score())
	}

	names := make([]string, 0, len(winners))
	for _, id := range winners {
		if id >= 0 && id < len(players) {
			names = append(names, players[id].Name)
		}
	}
	switch len(names) {
	case 0:
		fmt.Fprintln(w, "no winner")
	case 1:
		fmt.Fprintf(w, "winner: %s\n", names[0])
	default:
		fmt.Fprintf(w, "draw: %s\n", strings.Join(names, ", "))
	}
}
