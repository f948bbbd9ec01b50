package domain

import (
	"errors"
	"fmt"
)

type OutcomeKind string

const (
	KindWin  OutcomeKind = "win"
	KindLoss OutcomeKind = "loss"
	KindDraw OutcomeKind = "draw"
)

// Reason explains a Loss.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonInvalidColumn Reason = "invalid_column"
	ReasonColumnFull    Reason = "column_full"
	ReasonAgentFault    Reason = "agent_fault"
)

// Outcome is the terminal result of a match. Player is the winner for a Win,
// the offender for a Loss and zero for a Draw.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Player PlayerID    `json:"player,omitempty"`
	Reason Reason      `json:"reason,omitempty"`
}

func Win(p PlayerID) Outcome {
	return Outcome{Kind: KindWin, Player: p}
}

func Loss(p PlayerID, reason Reason) Outcome {
	return Outcome{Kind: KindLoss, Player: p, Reason: reason}
}

func Draw() Outcome {
	return Outcome{Kind: KindDraw}
}

// Winner returns the player credited with the match, if any. A Loss credits
// nobody: the opponent of a faulting agent did not win on the board.
func (o Outcome) Winner() (PlayerID, bool) {
	if o.Kind == KindWin {
		return o.Player, true
	}
	return 0, false
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindWin:
		return fmt.Sprintf("Win(%s)", o.Player)
	case KindLoss:
		return fmt.Sprintf("Loss(%s, %s)", o.Player, o.Reason)
	case KindDraw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// ReasonFor maps a rejected move onto a loss reason. Anything that is not a
// board error is the agent's fault.
func ReasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrColumnInvalid):
		return ReasonInvalidColumn
	case errors.Is(err, ErrColumnFull):
		return ReasonColumnFull
	default:
		return ReasonAgentFault
	}
}
