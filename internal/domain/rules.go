package domain

// CheckWin reports whether the stone just dropped into column completes a run
// of Connect cells. It must run on the board returned by Apply, after the
// perspective flip, so the mover's stones are the filled cells holding 0.
// Only lines through that stone are inspected.
func CheckWin(b *Board, column int) bool {
	h := b.Height(column)
	if h == 0 {
		return false
	}
	row := h - 1
	if b.Stone(column, row) != Opponent {
		return false
	}

	if verticalWin(b, column) {
		return true
	}

	directions := [][2]int{
		{1, 0},  // horizontal
		{1, 1},  // diagonal /
		{1, -1}, // diagonal \
	}
	for _, dir := range directions {
		run := 1 + countRun(b, column, row, dir[0], dir[1]) + countRun(b, column, row, -dir[0], -dir[1])
		if run >= b.variant.Connect {
			return true
		}
	}
	return false
}

// verticalWin tests the Connect bits ending at the top of the column: all of
// them are the mover's when their complement is all ones.
func verticalWin(b *Board, column int) bool {
	connect := b.variant.Connect
	col := b.columns[column]
	h := int(col.Height)
	if h < connect {
		return false
	}
	window := uint8(1<<connect - 1)
	return (^col.Mask>>(h-connect))&window == window
}

// countRun walks from (c, r) in direction (dc, dr) and counts consecutive
// filled cells of the mover, stopping at the board edge, an unfilled cell or
// a stone of the other player.
func countRun(b *Board, c, r, dc, dr int) int {
	count := 0
	for {
		c, r = c+dc, r+dr
		if b.Stone(c, r) != Opponent {
			return count
		}
		count++
	}
}
