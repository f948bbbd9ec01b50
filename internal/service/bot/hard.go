package bot

import (
	"context"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

const (
	MINIMAX_DEPTH       = 7
	MINIMAX_WIN         = 1000000
	MINIMAX_DRAW        = 0
	POSITION_WEIGHT     = 10
	TWO_IN_ROW_WEIGHT   = 50
	THREE_IN_ROW_WEIGHT = 500
)

// calculateBestMoveMinimax runs negamax with alpha-beta pruning. Every board
// in the search is from the side to move, which is exactly how the packed
// board flips after Apply.
func calculateBestMoveMinimax(ctx context.Context, board *domain.Board) int {
	validColumns := centerFirst(board.ValidMoves(), board.Width()/2)

	bestCol := validColumns[0]
	bestScore := -MINIMAX_WIN * 2
	alpha := -MINIMAX_WIN * 2
	beta := MINIMAX_WIN * 2

	for _, col := range validColumns {
		if ctx.Err() != nil {
			break
		}

		child := board.Clone()
		child.Apply(col)

		// If this move wins immediately, take it
		if domain.CheckWin(child, col) {
			return col
		}

		score := -negamax(ctx, child, MINIMAX_DEPTH-1, -beta, -alpha)
		if ctx.Err() != nil {
			break
		}
		if score > bestScore {
			bestScore = score
			bestCol = col
		}
		alpha = max(alpha, bestScore)
	}

	return bestCol
}

// negamax gives up with a neutral score once ctx is done; the caller
// discards whatever a cancelled search returns.
func negamax(ctx context.Context, board *domain.Board, depth, alpha, beta int) int {
	if ctx.Err() != nil {
		return MINIMAX_DRAW
	}
	validColumns := board.ValidMoves()

	// Terminal conditions
	if len(validColumns) == 0 {
		return MINIMAX_DRAW
	}
	if depth == 0 {
		return evaluateBoard(board)
	}

	best := -MINIMAX_WIN * 2
	for _, col := range centerFirst(validColumns, board.Width()/2) {
		child := board.Clone()
		child.Apply(col)

		var score int
		if domain.CheckWin(child, col) {
			score = MINIMAX_WIN + depth // Prefer quicker wins
		} else {
			score = -negamax(ctx, child, depth-1, -beta, -alpha)
		}

		best = max(best, score)
		alpha = max(alpha, score)
		if alpha >= beta {
			break // cutoff
		}
	}
	return best
}

// centerFirst orders moves by distance from the center, which makes the
// alpha-beta cutoffs arrive much earlier.
func centerFirst(cols []int, center int) []int {
	ordered := make([]int, len(cols))
	copy(ordered, cols)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && abs(ordered[j]-center) < abs(ordered[j-1]-center); j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
