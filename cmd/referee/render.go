package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
)

func printReport(w io.Writer, r *match.Report) {
	fmt.Fprintf(w, "%s vs %s on %dx%d connect %d\n",
		r.Agents[0], r.Agents[1], r.Variant.Columns, r.Variant.Rows, r.Variant.Connect)
	fmt.Fprint(w, renderBoard(r.Board, r.Moves))
	fmt.Fprintf(w, "outcome: %s after %d moves\n", r.Outcome, r.Moves)
	if r.Fault != "" {
		fmt.Fprintf(w, "fault: %s\n", r.Fault)
	}
}

// renderBoard draws the board top row first, X for player 1 and O for
// player 2. moves tells whose perspective the snapshot is stored in.
func renderBoard(s domain.Snapshot, moves int) string {
	toMove := domain.Player1
	if moves%2 == 1 {
		toMove = domain.Player2
	}
	mark := map[domain.PlayerID]byte{domain.Player1: 'X', domain.Player2: 'O'}

	var b strings.Builder
	for row := s.Variant.Rows - 1; row >= 0; row-- {
		b.WriteByte('|')
		for col := range s.Heights {
			cell := byte('.')
			if row < int(s.Heights[col]) {
				if s.Masks[col]>>row&1 == 1 {
					cell = mark[toMove]
				} else {
					cell = mark[toMove.Other()]
				}
			}
			b.WriteByte(' ')
			b.WriteByte(cell)
		}
		b.WriteString(" |\n")
	}
	b.WriteByte('+')
	b.WriteString(strings.Repeat("--", len(s.Heights)))
	b.WriteString("-+\n")
	return b.String()
}
