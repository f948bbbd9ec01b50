package bot

import (
	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

const (
	// Score priorities (from highest to lowest)
	SCORE_WIN_NOW           = 100000 // Bot can win immediately
	SCORE_BLOCK_WIN         = 10000  // Block opponent's immediate win
	SCORE_CREATE_WIN_THREAT = 8000   // Leave two winning replies at once
	SCORE_GIFT_WIN          = 9000   // Our stone lets the opponent win on top of it
	SCORE_CENTER            = 30     // Center column bonus
	SCORE_NEAR_CENTER       = 20     // Near center bonus
	SCORE_EDGE              = 5      // Edge columns
)

// evaluateBoard scores the position for the side to move: every window of
// Connect cells that only one side occupies counts for that side.
func evaluateBoard(board *domain.Board) int {
	connect := board.Variant().Connect
	score := 0

	directions := [][2]int{
		{1, 0},  // horizontal
		{0, 1},  // vertical
		{1, 1},  // diagonal /
		{1, -1}, // diagonal \
	}

	for col := 0; col < board.Width(); col++ {
		for row := 0; row < board.Rows(); row++ {
			for _, dir := range directions {
				endCol := col + dir[0]*(connect-1)
				endRow := row + dir[1]*(connect-1)
				if !isInBounds(board, endCol, endRow) {
					continue
				}
				score += evaluateWindow(board, col, row, dir[0], dir[1], connect)
			}
		}
	}

	// Center column preference
	center := board.Width() / 2
	for row := 0; row < board.Height(center); row++ {
		switch board.Stone(center, row) {
		case domain.Own:
			score += POSITION_WEIGHT * 2
		case domain.Opponent:
			score -= POSITION_WEIGHT * 2
		}
	}

	return score
}

func evaluateWindow(board *domain.Board, col, row, dCol, dRow, connect int) int {
	own, opp := 0, 0
	for i := 0; i < connect; i++ {
		switch board.Stone(col+dCol*i, row+dRow*i) {
		case domain.Own:
			own++
		case domain.Opponent:
			opp++
		}
	}

	switch {
	case own > 0 && opp > 0:
		return 0
	case own > 0:
		return windowWeight(own, connect)
	case opp > 0:
		return -windowWeight(opp, connect)
	}
	return 0
}

func windowWeight(stones, connect int) int {
	switch connect - stones {
	case 0:
		return MINIMAX_WIN / 100
	case 1:
		return THREE_IN_ROW_WEIGHT
	case 2:
		return TWO_IN_ROW_WEIGHT
	default:
		return 0
	}
}

// Helper: check if position is within board bounds
func isInBounds(board *domain.Board, col, row int) bool {
	return row >= 0 && row < board.Rows() && col >= 0 && col < board.Width()
}
