// Package bot holds the house agents: host-side strategies that play through
// the same Decide capability as sandboxed guests. They rebuild a private
// board from the snapshot they are handed and never see the referee's board.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

type Difficulty string

const (
	First  Difficulty = "first"
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Prefix marks an agent name as a house agent, e.g. "bot:hard".
const Prefix = "bot:"

// ParseName turns "bot:hard" into Hard.
func ParseName(name string) (Difficulty, bool) {
	d, ok := strings.CutPrefix(name, Prefix)
	if !ok {
		return "", false
	}
	switch Difficulty(d) {
	case First, Easy, Medium, Hard:
		return Difficulty(d), true
	default:
		return "", false
	}
}

type Agent struct {
	difficulty Difficulty
	mu         sync.Mutex
	rng        *rand.Rand
}

func New(d Difficulty) (*Agent, error) {
	return NewWithSeed(d, time.Now().UnixNano())
}

func NewWithSeed(d Difficulty, seed int64) (*Agent, error) {
	switch d {
	case First, Easy, Medium, Hard:
	default:
		return nil, fmt.Errorf("unknown bot difficulty %q", d)
	}
	return &Agent{difficulty: d, rng: rand.New(rand.NewSource(seed))}, nil
}

func (a *Agent) Difficulty() Difficulty { return a.difficulty }

func (a *Agent) Decide(ctx context.Context, snap domain.Snapshot) (int, error) {
	board, err := snap.Board()
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return CalculateBestMove(ctx, board, a.difficulty, a.rng), nil
}

// CalculateBestMove selects a column for the side to move on board. With no
// playable column it returns the board width, which the referee rejects.
func CalculateBestMove(ctx context.Context, board *domain.Board, difficulty Difficulty, rng *rand.Rand) int {
	if len(board.ValidMoves()) == 0 {
		return board.Width()
	}
	switch difficulty {
	case First:
		return board.ValidMoves()[0]
	case Easy:
		return calculateEasyMove(board, rng)
	case Hard:
		return calculateBestMoveMinimax(ctx, board)
	default:
		return calculateMediumMove(ctx, board)
	}
}

// winsAt reports whether the side to move wins by playing col.
func winsAt(board *domain.Board, col int) bool {
	sim := board.Clone()
	if err := sim.Apply(col); err != nil {
		return false
	}
	return domain.CheckWin(sim, col)
}

// winningMoves lists the columns where the side to move wins immediately.
func winningMoves(board *domain.Board) []int {
	var cols []int
	for _, col := range board.ValidMoves() {
		if winsAt(board, col) {
			cols = append(cols, col)
		}
	}
	return cols
}
