package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox/sandboxtest"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeWasm(t *testing.T, name string, wasm []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, wasm, 0o644))
	return path
}

func TestRenderBoard(t *testing.T) {
	v := domain.Variant{Name: "tiny", Columns: 3, Rows: 2, Connect: 2}
	b, err := domain.NewBoard(v)
	require.NoError(t, err)
	for _, c := range []int{0, 0, 2} {
		require.NoError(t, b.Apply(c))
	}

	want := "" +
		"| O . . |\n" +
		"| X . X |\n" +
		"+-------+\n"
	assert.Equal(t, want, renderBoard(b.Snapshot(), 3))
}

func TestPlayHouseAgents(t *testing.T) {
	code, out, _ := run(t, "play", "--p1", "bot:first", "--p2", "bot:first")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "outcome: Win(player 1) after 19 moves")
}

func TestPlayFromEnv(t *testing.T) {
	t.Setenv("REFEREE_P1", "bot:first")
	t.Setenv("REFEREE_P2", "bot:first")
	t.Setenv("REFEREE_VARIANT_COLUMNS", "2")
	t.Setenv("REFEREE_VARIANT_ROWS", "3")
	t.Setenv("REFEREE_VARIANT_CONNECT", "3")

	code, out, _ := run(t, "play", "--verbose")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "move 1: player 1 -> column 0")
	assert.Contains(t, out, "outcome: Draw after 6 moves")
}

func TestPlaySandboxedAgent(t *testing.T) {
	path := writeWasm(t, "first.wasm", sandboxtest.FirstOpen())
	code, out, _ := run(t, "play", "--p1", "bot:first", "--p2", path, "--memory-pages", "16")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "outcome: Win(player 1) after 19 moves")

	trap := writeWasm(t, "trap.wasm", sandboxtest.Trap())
	code, out, _ = run(t, "play", "--p1", trap, "--p2", "bot:first")
	assert.Equal(t, 0, code, "a fault is an outcome, not a failure")
	assert.Contains(t, out, "Loss(player 1, agent_fault)")
}

func TestPlayLoadFailureExitsOne(t *testing.T) {
	garbage := writeWasm(t, "garbage.wasm", sandboxtest.Garbage())
	code, _, stderr := run(t, "play", "--p1", garbage, "--p2", "bot:first")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "agent failed to load")

	code, _, _ = run(t, "play", "--p1", filepath.Join(t.TempDir(), "missing.wasm"), "--p2", "bot:first")
	assert.Equal(t, 1, code)
}

func TestPlayRejectsBadFlags(t *testing.T) {
	code, _, _ := run(t, "play", "--p1", "bot:first")
	assert.Equal(t, 2, code)

	code, _, _ = run(t, "play", "--p1", "bot:first", "--p2", "bot:first", "--variant-rows", "9")
	assert.Equal(t, 2, code)
}

func TestValidate(t *testing.T) {
	good := writeWasm(t, "good.wasm", sandboxtest.Constant(0))
	bad := writeWasm(t, "bad.wasm", sandboxtest.WrongSignature())

	code, out, _ := run(t, "validate", good)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "good.wasm: ok")

	code, out, _ = run(t, "validate", good, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "bad.wasm: FAIL")
}
