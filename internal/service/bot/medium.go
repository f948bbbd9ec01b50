package bot

import (
	"context"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

func calculateMediumMove(ctx context.Context, board *domain.Board) int {
	validColumns := board.ValidMoves()
	scores := make(map[int]int, len(validColumns))

	opponentWins := winningMoves(board.Swapped())

	for _, col := range validColumns {
		if ctx.Err() != nil {
			break
		}

		// === PHASE 1: Immediate win ===
		if winsAt(board, col) {
			scores[col] += SCORE_WIN_NOW
			continue
		}

		// === PHASE 2: Block the opponent's immediate win ===
		for _, oc := range opponentWins {
			if oc == col {
				scores[col] += SCORE_BLOCK_WIN
			}
		}

		after := board.Clone()
		after.Apply(col)

		// === PHASE 3: Never hand the opponent a win ===
		// after the move the opponent is the side to move on `after`
		if len(winningMoves(after)) > 0 {
			scores[col] -= SCORE_GIFT_WIN
		}

		// === PHASE 4: Create a double threat ===
		if len(winningMoves(after.Swapped())) >= 2 {
			scores[col] += SCORE_CREATE_WIN_THREAT
		}

		// === PHASE 5: Position strength, from our side ===
		scores[col] += evaluateBoard(after.Swapped()) / 10
	}

	// === PHASE 6: Positional bonuses (center preference) ===
	center := board.Width() / 2
	for _, col := range validColumns {
		switch abs(col - center) {
		case 0:
			scores[col] += SCORE_CENTER
		case 1:
			scores[col] += SCORE_NEAR_CENTER
		case 2:
			scores[col] += SCORE_EDGE
		}
	}

	return findBestColumn(validColumns, scores, center)
}

// Find the column with the highest score; ties go to the column nearest the
// center.
func findBestColumn(validColumns []int, scores map[int]int, center int) int {
	bestColumn := validColumns[0]
	for _, col := range validColumns[1:] {
		if scores[col] > scores[bestColumn] {
			bestColumn = col
		} else if scores[col] == scores[bestColumn] && abs(col-center) < abs(bestColumn-center) {
			bestColumn = col
		}
	}
	return bestColumn
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
