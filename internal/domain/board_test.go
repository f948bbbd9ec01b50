package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassic(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(Classic)
	require.NoError(t, err)
	return b
}

// play applies the columns in order, alternating players, and fails the test
// on the first rejected move.
func play(t *testing.T, b *Board, columns ...int) {
	t.Helper()
	for i, c := range columns {
		require.NoError(t, b.Apply(c), "move %d (column %d)", i+1, c)
	}
}

func TestNewBoardIsEmpty(t *testing.T) {
	b := newClassic(t)
	assert.Equal(t, 7, b.Width())
	assert.Equal(t, 6, b.Rows())
	for c := 0; c < b.Width(); c++ {
		assert.Zero(t, b.Height(c))
		assert.Zero(t, b.Mask(c))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, b.ValidMoves())
}

func TestNewBoardRejectsBadVariant(t *testing.T) {
	_, err := NewBoard(Variant{Name: "wide", Columns: 17, Rows: 6, Connect: 4})
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestApplyFlipsPerspective(t *testing.T) {
	b := newClassic(t)
	require.NoError(t, b.Apply(3))

	assert.Equal(t, 1, b.Height(3))
	// the stone just placed reads 0, belonging to the player who moved
	assert.Equal(t, uint8(0), b.Mask(3))
	assert.Equal(t, Opponent, b.Stone(3, 0))

	require.NoError(t, b.Apply(3))
	assert.Equal(t, 2, b.Height(3))
	// first stone now belongs to the side to move, second to the mover
	assert.Equal(t, uint8(0b01), b.Mask(3))
	assert.Equal(t, Own, b.Stone(3, 0))
	assert.Equal(t, Opponent, b.Stone(3, 1))
}

func TestFlipOnlyTouchesRowBits(t *testing.T) {
	b := newClassic(t)
	play(t, b, 0, 1, 2)
	for _, col := range b.columns {
		assert.Zero(t, col.Mask&^b.full, "bits above the top row leaked")
	}
}

func TestFlipIsSelfInverse(t *testing.T) {
	b := newClassic(t)
	play(t, b, 0, 1, 1, 4)
	before := b.Snapshot()

	twice := b.Swapped().Swapped()
	assert.Equal(t, before, twice.Snapshot())

	once := b.Swapped()
	for c := 0; c < b.Width(); c++ {
		assert.Equal(t, ^before.Masks[c]&b.full, once.Snapshot().Masks[c])
	}
}

func TestEveryMoveFlipsEveryColumn(t *testing.T) {
	b := newClassic(t)
	play(t, b, 2, 5)
	before := b.Snapshot()
	require.NoError(t, b.Apply(0))
	after := b.Snapshot()

	for c := 1; c < b.Width(); c++ {
		assert.Equal(t, ^before.Masks[c]&b.full, after.Masks[c], "column %d", c)
	}
	// column 0 got bit 0 set then flipped
	assert.Equal(t, ^(before.Masks[0]|1)&b.full, after.Masks[0])
}

func TestApplyRejectsInvalidColumn(t *testing.T) {
	b := newClassic(t)
	play(t, b, 3)
	before := b.Snapshot()

	for _, c := range []int{-1, 7, 100} {
		assert.ErrorIs(t, b.Apply(c), ErrColumnInvalid)
	}
	assert.Equal(t, before, b.Snapshot())
}

func TestApplyFullColumn(t *testing.T) {
	for c := 0; c < Classic.Columns; c++ {
		b := newClassic(t)
		for i := 0; i < Classic.Rows; i++ {
			require.NoError(t, b.Apply(c))
		}
		require.Equal(t, Classic.Rows, b.Height(c))
		assert.False(t, b.CanPlay(c))

		before := b.Snapshot()
		assert.ErrorIs(t, b.Apply(c), ErrColumnFull)
		assert.Equal(t, before, b.Snapshot(), "failed apply mutated column %d", c)
		assert.LessOrEqual(t, b.Height(c), b.Rows())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := newClassic(t)
	play(t, b, 0, 0, 1)
	s := b.Snapshot()
	s.Heights[0] = 6
	s.Masks[1] = 0xff

	assert.Equal(t, 2, b.Height(0))
	assert.NotEqual(t, uint8(0xff), b.Mask(1))
}

func TestSnapshotEncodeRoundTrip(t *testing.T) {
	b := newClassic(t)
	play(t, b, 3, 3, 2, 4, 4, 0)
	s := b.Snapshot()

	buf := s.Encode()
	require.Len(t, buf, 3+2*7)
	assert.Equal(t, []byte{7, 6, 4}, buf[:3])

	decoded, err := DecodeSnapshot(buf)
	require.NoError(t, err)
	assert.Equal(t, s.Heights, decoded.Heights)
	assert.Equal(t, s.Masks, decoded.Masks)

	rebuilt, err := decoded.Board()
	require.NoError(t, err)
	for c := 0; c < b.Width(); c++ {
		assert.Equal(t, b.Height(c), rebuilt.Height(c))
		assert.Equal(t, b.Mask(c), rebuilt.Mask(c))
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte{7})
	assert.ErrorIs(t, err, ErrBadSnapshot)

	_, err = DecodeSnapshot([]byte{7, 6, 4, 0, 0})
	assert.ErrorIs(t, err, ErrBadSnapshot)

	bad := Snapshot{Variant: Classic, Heights: []uint8{7, 0, 0, 0, 0, 0, 0}, Masks: make([]uint8, 7)}
	_, err = bad.Board()
	assert.ErrorIs(t, err, ErrBadSnapshot)
}

func TestGravitripsAliasesClassic(t *testing.T) {
	assert.NotEqual(t, Classic.Name, Gravitrips.Name)
	alias := Gravitrips
	alias.Name = Classic.Name
	assert.Equal(t, Classic, alias)
}

func TestVariantValidate(t *testing.T) {
	cases := []struct {
		name string
		v    Variant
		ok   bool
	}{
		{"classic", Classic, true},
		{"gravitrips", Gravitrips, true},
		{"tall narrow", Variant{Name: "tall", Columns: 1, Rows: 8, Connect: 8}, true},
		{"no name", Variant{Columns: 7, Rows: 6, Connect: 4}, false},
		{"too many rows", Variant{Name: "x", Columns: 7, Rows: 9, Connect: 4}, false},
		{"zero columns", Variant{Name: "x", Columns: 0, Rows: 6, Connect: 4}, false},
		{"connect too long", Variant{Name: "x", Columns: 4, Rows: 4, Connect: 5}, false},
		{"connect one", Variant{Name: "x", Columns: 4, Rows: 4, Connect: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.v.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidVariant)
			}
		})
	}
}
