package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWin(t *testing.T) {
	cases := []struct {
		name  string
		moves []int
		want  bool
	}{
		{"vertical four", []int{0, 6, 0, 6, 0, 6, 0}, true},
		{"vertical three", []int{0, 6, 0, 6, 0}, false},
		{"horizontal asymmetric straddle", []int{0, 0, 1, 1, 3, 3, 2}, true},
		{"horizontal symmetric straddle", []int{1, 1, 2, 2, 4, 4, 5, 5, 3}, true},
		{"horizontal split by empty column", []int{1, 1, 2, 2, 4, 4, 5}, false},
		{"three plus gap", []int{0, 0, 1, 1, 3, 3}, false},
		{"three in a row", []int{0, 0, 1, 1, 2, 6}, false},
		{"mover's split three, played away from the gap", []int{1, 1, 3, 3, 0}, false},
		{"ascending diagonal ends on top", []int{0, 1, 1, 2, 2, 3, 2, 3, 3, 6, 3}, true},
		{"ascending diagonal completed in the middle", []int{0, 1, 2, 2, 2, 3, 3, 3, 3, 6, 6, 6, 1}, true},
		{"descending diagonal", []int{6, 5, 5, 4, 4, 3, 4, 3, 3, 0, 3}, true},
		{"descending diagonal completed in the middle", []int{6, 5, 4, 4, 4, 3, 3, 3, 3, 0, 0, 0, 5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newClassic(t)
			play(t, b, tc.moves...)
			last := tc.moves[len(tc.moves)-1]
			assert.Equal(t, tc.want, CheckWin(b, last))
		})
	}
}

func TestCheckWinOnlyForTheMover(t *testing.T) {
	// player 1 holds four in column 0; player 2 then drops into column 6
	b := newClassic(t)
	play(t, b, 0, 6, 0, 6, 0, 6, 0)
	require.True(t, CheckWin(b, 0))

	require.NoError(t, b.Apply(5))
	assert.False(t, CheckWin(b, 5))
	// the column 0 run now reads as the side to move, not the mover
	assert.False(t, CheckWin(b, 0))
}

func TestCheckWinEdges(t *testing.T) {
	b := newClassic(t)
	assert.False(t, CheckWin(b, 0), "empty column")
	assert.False(t, CheckWin(b, -1))
	assert.False(t, CheckWin(b, 7))

	// a run against the right edge does not wrap onto the left
	play(t, b, 6, 6, 5, 5, 0, 0, 4)
	assert.False(t, CheckWin(b, 4))
}

func TestCheckWinHonoursConnect(t *testing.T) {
	v := Variant{Name: "connect3", Columns: 5, Rows: 4, Connect: 3}
	b, err := NewBoard(v)
	require.NoError(t, err)
	play(t, b, 0, 0, 1, 1)
	require.NoError(t, b.Apply(2))
	assert.True(t, CheckWin(b, 2))
}

func TestFullBoardWithoutRun(t *testing.T) {
	moves := []int{5, 4, 5, 0, 6, 2, 4, 5, 5, 0, 4, 1, 1, 0, 4, 5, 6, 5, 3, 1, 1, 2, 2, 6, 2, 6, 6, 3, 6, 2, 0, 3, 0, 3, 3, 4, 3, 1, 4, 2, 1, 0}
	b := newClassic(t)
	for _, c := range moves {
		require.NoError(t, b.Apply(c))
		require.False(t, CheckWin(b, c))
	}
	assert.True(t, b.IsFull())
	assert.Empty(t, b.ValidMoves())
}
