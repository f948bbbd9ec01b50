package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/referee"
)

const (
	exitOK    = 0
	exitLoad  = 1
	exitOther = 2
)

// exitError carries the process exit code out of a cobra RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitOther
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "referee",
		Short:         "Referee gravity-drop matches between sandboxed agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlayCmd(stdout), newValidateCmd(stdout))
	return root
}

// bindEnv makes every flag of cmd readable from REFEREE_<FLAG>.
func bindEnv(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("REFEREE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return v, nil
}

func newPlayCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one match and print the outcome",
		Example: "  referee play --p1 agent.wasm --p2 bot:hard\n" +
			"  REFEREE_P1=bot:easy REFEREE_P2=bot:medium referee play --verbose",
		Args: cobra.NoArgs,
	}
	f := cmd.Flags()
	f.String("p1", "", "player 1: a .wasm file or a house agent (bot:first, bot:easy, bot:medium, bot:hard)")
	f.String("p2", "", "player 2")
	f.Int("variant-columns", domain.Classic.Columns, "board width")
	f.Int("variant-rows", domain.Classic.Rows, "board height")
	f.Int("variant-connect", domain.Classic.Connect, "run length that wins")
	f.Duration("timeout", sandbox.DefaultLimits.Timeout, "per-move time limit; zero or less uses the default")
	f.Uint32("memory-pages", sandbox.DefaultLimits.MemoryPages, "guest memory limit in 64 KiB pages")
	f.Duration("match-timeout", 10*time.Minute, "limit for the whole match")
	f.Bool("verbose", false, "print every move")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v, err := bindEnv(cmd)
		if err != nil {
			return err
		}
		return runPlay(cmd.Context(), v, stdout)
	}
	return cmd
}

func runPlay(ctx context.Context, v *viper.Viper, stdout io.Writer) error {
	p1, p2 := v.GetString("p1"), v.GetString("p2")
	if p1 == "" || p2 == "" {
		return &exitError{code: exitOther, err: errors.New("both --p1 and --p2 are required")}
	}
	variant := domain.Variant{
		Name:    "cli",
		Columns: v.GetInt("variant-columns"),
		Rows:    v.GetInt("variant-rows"),
		Connect: v.GetInt("variant-connect"),
	}
	if err := variant.Validate(); err != nil {
		return &exitError{code: exitOther, err: err}
	}

	verbose := v.GetBool("verbose")
	logger := zap.NewNop()
	if verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	svc, err := match.NewService(fixedVariant(variant), fileArtifacts{}, match.Config{
		Limits:         sandbox.Limits{Timeout: v.GetDuration("timeout"), MemoryPages: v.GetUint32("memory-pages")},
		MatchTimeout:   v.GetDuration("match-timeout"),
		AgentCacheSize: 2,
	}, logger)
	if err != nil {
		return err
	}
	defer svc.Close(context.Background())

	var observer referee.Observer
	if verbose {
		observer = referee.ObserverFunc(func(turn referee.Turn) {
			fmt.Fprintf(stdout, "move %d: %s -> column %d (row %d, %s)\n",
				turn.Number, turn.Player, turn.Column, turn.Row, turn.Elapsed.Round(time.Microsecond))
		})
	}

	report, err := svc.Run(ctx, match.Request{Variant: variant.Name, Agents: [2]string{p1, p2}}, observer)
	if err != nil {
		if isLoadFailure(err) {
			return &exitError{code: exitLoad, err: err}
		}
		return &exitError{code: exitOther, err: err}
	}

	printReport(stdout, report)
	return nil
}

func isLoadFailure(err error) bool {
	return errors.Is(err, sandbox.ErrLoad) || errors.Is(err, os.ErrNotExist) || errors.Is(err, match.ErrBadRequest)
}

func newValidateCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.wasm>...",
		Short: "Check that artifacts load as agents",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().Uint32("memory-pages", sandbox.DefaultLimits.MemoryPages, "guest memory limit in 64 KiB pages")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := bindEnv(cmd)
		if err != nil {
			return err
		}
		limits := sandbox.Limits{Timeout: sandbox.DefaultLimits.Timeout, MemoryPages: v.GetUint32("memory-pages")}

		var failed error
		for _, path := range args {
			wasm, err := os.ReadFile(path)
			if err == nil {
				err = sandbox.Validate(cmd.Context(), wasm, limits)
			}
			if err != nil {
				fmt.Fprintf(stdout, "%s: FAIL %v\n", path, err)
				failed = err
				continue
			}
			fmt.Fprintf(stdout, "%s: ok\n", path)
		}
		if failed != nil {
			return &exitError{code: exitLoad, err: errors.New("one or more artifacts failed to load")}
		}
		return nil
	}
	return cmd
}

type fixedVariant domain.Variant

func (f fixedVariant) Get(context.Context, string) (domain.Variant, error) {
	return domain.Variant(f), nil
}

// fileArtifacts treats an agent name as a path to a wasm file.
type fileArtifacts struct{}

func (fileArtifacts) GetArtifact(_ context.Context, path string) ([]byte, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sandbox.ErrLoad, err)
	}
	return wasm, nil
}
