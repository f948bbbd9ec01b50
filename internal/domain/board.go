package domain

import "math/bits"

// Column is one packed column of the board. Bit i of Mask is row i counted
// from the bottom; only bits below Height carry meaning.
type Column struct {
	Mask   uint8
	Height uint8
}

// Board is stored relative to the player who just moved: a filled cell whose
// bit is 0 belongs to that player, a filled cell whose bit is 1 belongs to the
// player about to act.
type Board struct {
	variant Variant
	columns []Column
	full    uint8 // low Rows bits set, the flip is restricted to these
}

// NewBoard returns an empty board. The variant must already be valid.
func NewBoard(v Variant) (*Board, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &Board{
		variant: v,
		columns: make([]Column, v.Columns),
		full:    uint8(1<<v.Rows - 1),
	}, nil
}

func (b *Board) Variant() Variant { return b.variant }
func (b *Board) Width() int        { return len(b.columns) }
func (b *Board) Rows() int         { return b.variant.Rows }

// Height returns the number of filled cells in column c, or 0 when c is off
// the board.
func (b *Board) Height(c int) int {
	if c < 0 || c >= len(b.columns) {
		return 0
	}
	return int(b.columns[c].Height)
}

// Mask returns the raw bit pattern of column c, unfilled bits cleared.
func (b *Board) Mask(c int) uint8 {
	if c < 0 || c >= len(b.columns) {
		return 0
	}
	col := b.columns[c]
	return col.Mask & lowBits(col.Height)
}

// Filled reports whether cell (c, r) holds a stone.
func (b *Board) Filled(c, r int) bool {
	return c >= 0 && c < len(b.columns) && r >= 0 && r < int(b.columns[c].Height)
}

// Stone classifies cell (c, r) from the point of view of the player about
// to act.
func (b *Board) Stone(c, r int) Stone {
	if !b.Filled(c, r) {
		return Empty
	}
	if b.columns[c].Mask>>r&1 == 1 {
		return Own
	}
	return Opponent
}

// CanPlay reports whether Apply(c) would succeed.
func (b *Board) CanPlay(c int) bool {
	return c >= 0 && c < len(b.columns) && int(b.columns[c].Height) < b.variant.Rows
}

// ValidMoves lists the playable columns from left to right.
func (b *Board) ValidMoves() []int {
	moves := make([]int, 0, len(b.columns))
	for c := range b.columns {
		if b.CanPlay(c) {
			moves = append(moves, c)
		}
	}
	return moves
}

// Stones is the total number of filled cells.
func (b *Board) Stones() int {
	n := 0
	for _, col := range b.columns {
		n += int(col.Height)
	}
	return n
}

func (b *Board) IsFull() bool {
	return b.Stones() == b.variant.Cells()
}

// Apply drops a stone for the player about to act into column c and flips the
// board to the next player's perspective. On error the board is untouched.
func (b *Board) Apply(c int) error {
	if c < 0 || c >= len(b.columns) {
		return ErrColumnInvalid
	}
	col := &b.columns[c]
	if int(col.Height) >= b.variant.Rows {
		return ErrColumnFull
	}

	col.Mask |= 1 << col.Height
	col.Height++
	b.flip()
	return nil
}

func (b *Board) flip() {
	for i := range b.columns {
		b.columns[i].Mask = ^b.columns[i].Mask & b.full
	}
}

// Swapped returns a copy in which the side to move is inverted without a
// stone being placed. Strategies use it to ask "what if the opponent played
// here"; the referee never does.
func (b *Board) Swapped() *Board {
	cp := b.Clone()
	cp.flip()
	return cp
}

func (b *Board) Clone() *Board {
	cp := &Board{variant: b.variant, full: b.full, columns: make([]Column, len(b.columns))}
	copy(cp.columns, b.columns)
	return cp
}

// Snapshot copies the board into the read-only form handed to agents.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Variant: b.variant,
		Heights: make([]uint8, len(b.columns)),
		Masks:   make([]uint8, len(b.columns)),
	}
	for i, col := range b.columns {
		s.Heights[i] = col.Height
		s.Masks[i] = col.Mask & b.full
	}
	return s
}

// Ones counts the filled cells owned by the player about to act.
func (b *Board) Ones() int {
	n := 0
	for _, col := range b.columns {
		n += bits.OnesCount8(col.Mask & lowBits(col.Height))
	}
	return n
}

func lowBits(n uint8) uint8 {
	return uint8(1<<n - 1)
}

type Stone int

const (
	Empty Stone = iota
	Own
	Opponent
)
