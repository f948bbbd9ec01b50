package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox/sandboxtest"
)

var testLimits = Limits{Timeout: 200 * time.Millisecond, MemoryPages: 16}

func load(t *testing.T, wasm []byte, limits Limits) *Agent {
	t.Helper()
	ctx := context.Background()
	a, err := Load(ctx, t.Name(), wasm, limits)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(ctx) })
	return a
}

func emptySnapshot(t *testing.T) domain.Snapshot {
	t.Helper()
	b, err := domain.NewBoard(domain.Classic)
	require.NoError(t, err)
	return b.Snapshot()
}

func TestDecideConstant(t *testing.T) {
	a := load(t, sandboxtest.Constant(3), testLimits)
	col, err := a.Decide(context.Background(), emptySnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, 3, col)
}

func TestDecideNegativeColumnIsAProposal(t *testing.T) {
	a := load(t, sandboxtest.Constant(-1), testLimits)
	col, err := a.Decide(context.Background(), emptySnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, -1, col)
}

func TestDecideReadsTheSnapshot(t *testing.T) {
	a := load(t, sandboxtest.FirstOpen(), testLimits)
	ctx := context.Background()

	b, err := domain.NewBoard(domain.Classic)
	require.NoError(t, err)

	col, err := a.Decide(ctx, b.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 0, col)

	for i := 0; i < domain.Classic.Rows; i++ {
		require.NoError(t, b.Apply(0))
	}
	col, err = a.Decide(ctx, b.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 1, col)
}

func TestDecideFaults(t *testing.T) {
	cases := []struct {
		name string
		wasm []byte
	}{
		{"trap", sandboxtest.Trap()},
		{"infinite loop", sandboxtest.Spin()},
		{"memory limit", sandboxtest.GrowMemory()},
		{"alloc out of bounds", sandboxtest.BadAlloc()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := load(t, tc.wasm, testLimits)

			start := time.Now()
			_, err := a.Decide(context.Background(), emptySnapshot(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAgentFault)
			assert.Less(t, time.Since(start), 5*time.Second)

			var fe *FaultError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, t.Name(), fe.Agent)
		})
	}
}

func TestGrowMemoryWithinLimit(t *testing.T) {
	a := load(t, sandboxtest.GrowMemory(), Limits{Timeout: time.Second, MemoryPages: 256})
	col, err := a.Decide(context.Background(), emptySnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, 0, col)
}

func TestDecideIsStateless(t *testing.T) {
	// every call gets a fresh instance, so repeated calls agree
	a := load(t, sandboxtest.FirstOpen(), testLimits)
	for i := 0; i < 3; i++ {
		col, err := a.Decide(context.Background(), emptySnapshot(t))
		require.NoError(t, err)
		assert.Equal(t, 0, col)
	}
}

func TestZeroLimitsStillBoundDecide(t *testing.T) {
	a := load(t, sandboxtest.Spin(), Limits{})

	start := time.Now()
	_, err := a.Decide(context.Background(), emptySnapshot(t))
	assert.ErrorIs(t, err, ErrAgentFault)
	assert.Less(t, time.Since(start), 4*DefaultLimits.Timeout)
}

func TestLimitsWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultLimits, Limits{}.WithDefaults())
	assert.Equal(t, DefaultLimits.Timeout, Limits{Timeout: -time.Second}.WithDefaults().Timeout)

	custom := Limits{Timeout: time.Second, MemoryPages: 8}
	assert.Equal(t, custom, custom.WithDefaults())
}

func TestDecideHonoursCallerCancel(t *testing.T) {
	a := load(t, sandboxtest.Spin(), Limits{Timeout: time.Minute, MemoryPages: 16})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := a.Decide(ctx, emptySnapshot(t))
	assert.ErrorIs(t, err, ErrAgentFault)
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		wasm []byte
	}{
		{"garbage", sandboxtest.Garbage()},
		{"missing make_move", sandboxtest.MissingMakeMove()},
		{"wrong signature", sandboxtest.WrongSignature()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), tc.name, tc.wasm, testLimits)
			assert.ErrorIs(t, err, ErrLoad)
			assert.ErrorIs(t, Validate(context.Background(), tc.wasm, testLimits), ErrLoad)
		})
	}
}

func TestSharedCompilationCache(t *testing.T) {
	ctx := context.Background()
	cache := wazero.NewCompilationCache()
	defer cache.Close(ctx)

	for i := 0; i < 2; i++ {
		a, err := Load(ctx, "cached", sandboxtest.Constant(2), testLimits, WithCompilationCache(cache))
		require.NoError(t, err)
		col, err := a.Decide(ctx, emptySnapshot(t))
		require.NoError(t, err)
		assert.Equal(t, 2, col)
		require.NoError(t, a.Close(ctx))
	}
}
