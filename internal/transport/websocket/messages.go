package websocket

import (
	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/referee"
)

const (
	TypeStartMatch = "start_match"
	TypeTurn       = "turn"
	TypeResult     = "result"
	TypeError      = "error"
)

type ClientMessage struct {
	Type    string    `json:"type"`
	Token   string    `json:"token,omitempty"`
	Variant string    `json:"variant,omitempty"`
	Agents  [2]string `json:"agents"`
}

type ServerMessage struct {
	Type    string        `json:"type"`
	MatchID string        `json:"match_id,omitempty"`
	Turn    *referee.Turn `json:"turn,omitempty"`
	Report  *match.Report `json:"report,omitempty"`
	Message string        `json:"message,omitempty"`
}
