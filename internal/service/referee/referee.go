// Package referee drives one match between two agents. It owns the board,
// validates every proposed move host-side and turns any agent misbehaviour
// into a Loss for the offender.
package referee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
)

// Agent is the single capability a player exposes. Implementations receive a
// copy of the board and may fail; they can never touch the referee's board.
type Agent interface {
	Decide(ctx context.Context, snap domain.Snapshot) (int, error)
}

// Observer is told about every move the referee accepted.
type Observer interface {
	OnTurn(turn Turn)
}

type ObserverFunc func(Turn)

func (f ObserverFunc) OnTurn(turn Turn) { f(turn) }

type Turn struct {
	Number  int             `json:"number"`
	Player  domain.PlayerID `json:"player"`
	Column  int             `json:"column"`
	Row     int             `json:"row"`
	Board   domain.Snapshot `json:"board"`
	Elapsed time.Duration   `json:"elapsed_ns"`
}

// Result is what a finished match reports.
type Result struct {
	Outcome domain.Outcome  `json:"outcome"`
	Board   domain.Snapshot `json:"board"`
	Moves   int             `json:"moves"`
	// Fault holds the agent error or rejected-move error behind a Loss.
	Fault error `json:"-"`
}

// ErrAborted is returned when the caller cancels the match.
var ErrAborted = errors.New("match aborted")

type Referee struct {
	variant     domain.Variant
	agents      [2]Agent
	logger      *zap.Logger
	observer    Observer
	turnTimeout time.Duration
}

type Option func(*Referee)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Referee) { r.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(r *Referee) { r.observer = o }
}

// WithTurnTimeout bounds each Decide call on top of whatever the agent
// enforces itself.
func WithTurnTimeout(d time.Duration) Option {
	return func(r *Referee) { r.turnTimeout = d }
}

func New(v domain.Variant, p1, p2 Agent, opts ...Option) (*Referee, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if p1 == nil || p2 == nil {
		return nil, fmt.Errorf("referee needs two agents")
	}
	r := &Referee{
		variant: v,
		agents:  [2]Agent{p1, p2},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Play runs the match to completion. The only error it returns is ErrAborted
// when ctx is cancelled; every agent failure becomes an Outcome.
func (r *Referee) Play(ctx context.Context) (Result, error) {
	board, err := domain.NewBoard(r.variant)
	if err != nil {
		return Result{}, err
	}

	moveCap := r.variant.Cells()
	active := domain.Player1
	moves := 0

	for {
		if moves >= moveCap {
			return r.finish(board, moves, domain.Draw(), nil), nil
		}
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrAborted, err)
		}

		start := time.Now()
		column, err := r.decide(ctx, active, board.Snapshot())
		elapsed := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
			}
			return r.finish(board, moves, domain.Loss(active, domain.ReasonAgentFault), err), nil
		}

		if err := board.Apply(column); err != nil {
			return r.finish(board, moves, domain.Loss(active, domain.ReasonFor(err)), fmt.Errorf("column %d: %w", column, err)), nil
		}
		moves++

		if r.observer != nil {
			r.observer.OnTurn(Turn{
				Number:  moves,
				Player:  active,
				Column:  column,
				Row:     board.Height(column) - 1,
				Board:   board.Snapshot(),
				Elapsed: elapsed,
			})
		}

		if domain.CheckWin(board, column) {
			return r.finish(board, moves, domain.Win(active), nil), nil
		}

		active = active.Other()
	}
}

// decide calls the active agent on its own goroutine behind a recover, so an
// in-process agent that panics or ignores ctx cannot stall or crash the
// referee. A call abandoned on timeout is left to finish on its own.
func (r *Referee) decide(ctx context.Context, p domain.PlayerID, snap domain.Snapshot) (int, error) {
	if r.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.turnTimeout)
		defer cancel()
	}

	type decision struct {
		column int
		err    error
	}
	done := make(chan decision, 1)
	agent := r.agents[p-1]
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- decision{err: fmt.Errorf("agent panicked: %v", rec)}
			}
		}()
		column, err := agent.Decide(ctx, snap)
		done <- decision{column: column, err: err}
	}()

	select {
	case d := <-done:
		return d.column, d.err
	case <-ctx.Done():
		return 0, fmt.Errorf("no decision: %w", ctx.Err())
	}
}

func (r *Referee) finish(board *domain.Board, moves int, outcome domain.Outcome, fault error) Result {
	fields := []zap.Field{
		zap.String("variant", r.variant.Name),
		zap.Stringer("outcome", outcome),
		zap.Int("moves", moves),
	}
	if fault != nil {
		fields = append(fields, zap.Error(fault))
	}
	r.logger.Info("match finished", fields...)

	return Result{Outcome: outcome, Board: board.Snapshot(), Moves: moves, Fault: fault}
}
