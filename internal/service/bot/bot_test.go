package bot

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

func boardAfter(t *testing.T, cols ...int) *domain.Board {
	t.Helper()
	b, err := domain.NewBoard(domain.Classic)
	require.NoError(t, err)
	for _, c := range cols {
		require.NoError(t, b.Apply(c))
	}
	return b
}

func TestParseName(t *testing.T) {
	d, ok := ParseName("bot:hard")
	assert.True(t, ok)
	assert.Equal(t, Hard, d)

	_, ok = ParseName("bot:grandmaster")
	assert.False(t, ok)

	_, ok = ParseName("hard")
	assert.False(t, ok)
}

func TestNewRejectsUnknownDifficulty(t *testing.T) {
	_, err := New("impossible")
	assert.Error(t, err)
}

func TestEveryDifficultyTakesAnImmediateWin(t *testing.T) {
	// player 1 has three stacked in column 0 and is to move
	b := boardAfter(t, 0, 6, 0, 6, 0, 5)
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			col := CalculateBestMove(context.Background(), b, d, rand.New(rand.NewSource(1)))
			assert.Equal(t, 0, col)
		})
	}
}

func TestEveryDifficultyBlocks(t *testing.T) {
	// player 1 threatens column 0; player 2 has nothing of its own
	b := boardAfter(t, 0, 6, 0, 5, 0)
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			col := CalculateBestMove(context.Background(), b, d, rand.New(rand.NewSource(1)))
			assert.Equal(t, 0, col)
		})
	}
}

func TestNeverPicksAFullColumn(t *testing.T) {
	// column 3 is full
	b := boardAfter(t, 3, 3, 3, 3, 3, 3)
	for _, d := range []Difficulty{First, Easy, Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			col := CalculateBestMove(context.Background(), b, d, rand.New(rand.NewSource(7)))
			assert.True(t, b.CanPlay(col), "picked %d", col)
		})
	}
}

func TestFirstPicksLeftmostOpenColumn(t *testing.T) {
	b := boardAfter(t, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, 1, CalculateBestMove(context.Background(), b, First, nil))
}

func TestNoMoveReturnsWidth(t *testing.T) {
	v := domain.Variant{Name: "tiny", Columns: 2, Rows: 1, Connect: 2}
	b, err := domain.NewBoard(v)
	require.NoError(t, err)
	require.NoError(t, b.Apply(0))
	require.NoError(t, b.Apply(1))
	assert.Equal(t, 2, CalculateBestMove(context.Background(), b, Medium, nil))
}

func TestDecideRebuildsFromSnapshot(t *testing.T) {
	a, err := NewWithSeed(Medium, 1)
	require.NoError(t, err)
	b := boardAfter(t, 0, 6, 0, 6, 0, 5)

	col, err := a.Decide(context.Background(), b.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 0, col)

	_, err = a.Decide(context.Background(), domain.Snapshot{Variant: domain.Classic})
	assert.Error(t, err)
}

func TestHardBeatsFirst(t *testing.T) {
	b, err := domain.NewBoard(domain.Classic)
	require.NoError(t, err)

	strategies := []Difficulty{Hard, First}
	for turn := 0; turn < domain.Classic.Cells(); turn++ {
		d := strategies[turn%2]
		col := CalculateBestMove(context.Background(), b, d, nil)
		require.NoError(t, b.Apply(col))
		if domain.CheckWin(b, col) {
			assert.Equal(t, Hard, d, "won on turn %d", turn+1)
			return
		}
	}
	t.Fatal("hard did not win")
}

func TestCancelledSearchStopsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := boardAfter(t, 3)
	for _, d := range []Difficulty{Medium, Hard} {
		t.Run(string(d), func(t *testing.T) {
			start := time.Now()
			col := CalculateBestMove(ctx, b, d, nil)
			assert.True(t, b.CanPlay(col), "picked %d", col)
			assert.Less(t, time.Since(start), 100*time.Millisecond)
		})
	}
}

func TestAbandonedDecideReleasesTheAgent(t *testing.T) {
	a, err := NewWithSeed(Hard, 1)
	require.NoError(t, err)
	snap := boardAfter(t, 3).Snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	go a.Decide(ctx, snap)

	<-ctx.Done()
	done := make(chan struct{})
	go func() {
		defer close(done)
		expired, stop := context.WithCancel(context.Background())
		stop()
		_, err := a.Decide(expired, snap)
		assert.ErrorIs(t, err, context.Canceled)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent still busy with the abandoned search")
	}
}
