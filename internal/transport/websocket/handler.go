// Package websocket streams a match turn by turn to the client that started
// it. Closing the socket cancels the match.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/referee"
	"github.com/iamasit07/4-in-a-row/arena/pkg/auth"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

type MatchRunner interface {
	Run(ctx context.Context, req match.Request, observer referee.Observer) (*match.Report, error)
}

type TokenValidator interface {
	Authenticate(token string) (*auth.Claims, error)
}

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager *ConnectionManager
	Matches     MatchRunner
	Tokens      TokenValidator
	Upgrader    websocket.Upgrader
	Logger      *zap.Logger
}

// NewHandler creates a new WebSocket handler with dependencies
func NewHandler(cm *ConnectionManager, matches MatchRunner, tokens TokenValidator, allowedOrigins []string, logger *zap.Logger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		ConnManager: cm,
		Matches:     matches,
		Tokens:      tokens,
		Logger:      logger,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) Serve(c *gin.Context) {
	h.HandleWebSocket(c.Writer, c.Request)
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	// Set read deadline to detect stale connections
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &Client{conn: conn, cancel: cancel}

	// 1. Wait for the start message, which carries the token
	req, err := h.readStart(client)
	if err != nil {
		h.Logger.Info("websocket start rejected", zap.Error(err))
		client.Send(ServerMessage{Type: TypeError, Message: err.Error()})
		client.closeNormal()
		return
	}

	h.ConnManager.Add(client)
	defer h.ConnManager.RemoveIfMatching(client)

	// 2. Keep-alive pinger
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					return
				}
			}
		}
	}()

	// 3. The read loop only exists to notice the peer going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.Logger.Info("websocket closed unexpectedly", zap.Int64("user_id", client.userID), zap.Error(err))
				}
				return
			}
		}
	}()

	observer := referee.ObserverFunc(func(turn referee.Turn) {
		t := turn
		if err := client.Send(ServerMessage{Type: TypeTurn, Turn: &t}); err != nil {
			cancel()
		}
	})

	report, err := h.Matches.Run(ctx, req, observer)
	if err != nil {
		if ctx.Err() != nil {
			h.Logger.Info("match stream cancelled", zap.Int64("user_id", client.userID))
			return
		}
		client.Send(ServerMessage{Type: TypeError, Message: err.Error()})
		client.closeNormal()
		return
	}

	client.Send(ServerMessage{Type: TypeResult, MatchID: report.MatchID, Report: report})
	client.closeNormal()
}

func (h *Handler) readStart(client *Client) (match.Request, error) {
	_, data, err := client.conn.ReadMessage()
	if err != nil {
		return match.Request{}, err
	}

	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return match.Request{}, errors.New("invalid message format")
	}
	if msg.Type != TypeStartMatch {
		return match.Request{}, errors.New("expected start_match")
	}

	claims, err := h.Tokens.Authenticate(msg.Token)
	if err != nil {
		return match.Request{}, errors.New("invalid token")
	}
	client.userID = claims.UserID

	if msg.Variant == "" {
		msg.Variant = "classic"
	}
	return match.Request{Variant: msg.Variant, Agents: msg.Agents}, nil
}
