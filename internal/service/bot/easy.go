package bot

import (
	"math/rand"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

func calculateEasyMove(board *domain.Board, rng *rand.Rand) int {
	validColumns := board.ValidMoves()

	if wins := winningMoves(board); len(wins) > 0 {
		return wins[0]
	}

	// what would the opponent do with this move
	if blocks := winningMoves(board.Swapped()); len(blocks) > 0 {
		return blocks[0]
	}

	return validColumns[rng.Intn(len(validColumns))]
}
