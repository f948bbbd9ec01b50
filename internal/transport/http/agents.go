package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox"
	"github.com/iamasit07/4-in-a-row/arena/internal/transport/http/middleware"
	"github.com/iamasit07/4-in-a-row/arena/pkg/uid"
)

// agent names never contain ':' so they cannot collide with house agents
var agentNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

type AgentStore interface {
	CreateAgent(ctx context.Context, info postgres.AgentInfo, artifact []byte) (*postgres.AgentInfo, error)
	ListAgents(ctx context.Context) ([]postgres.AgentInfo, error)
}

type AgentHandler struct {
	Store    AgentStore
	Limits   sandbox.Limits
	MaxBytes int64
	Logger   *zap.Logger
}

func NewAgentHandler(store AgentStore, limits sandbox.Limits, maxBytes int64, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{Store: store, Limits: limits, MaxBytes: maxBytes, Logger: logger}
}

func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.Store.ListAgents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

// Upload stores a wasm artifact after checking that it loads as an agent.
// Form fields: name, artifact (file).
func (h *AgentHandler) Upload(c *gin.Context) {
	name := c.PostForm("name")
	if !agentNamePattern.MatchString(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-64 letters, digits, '.', '_' or '-'"})
		return
	}

	file, err := c.FormFile("artifact")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "artifact file is required"})
		return
	}
	if file.Size > h.MaxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("artifact exceeds %d bytes", h.MaxBytes)})
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	wasm, err := io.ReadAll(io.LimitReader(f, h.MaxBytes))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := sandbox.Validate(c.Request.Context(), wasm, h.Limits); err != nil {
		respondError(c, err)
		return
	}

	info, err := h.Store.CreateAgent(c.Request.Context(), postgres.AgentInfo{
		Name:       name,
		SHA256:     uid.Digest(wasm),
		UploadedBy: c.GetInt64(middleware.ContextUserID),
	}, wasm)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Logger.Info("agent uploaded", zap.String("agent", info.Name), zap.Int("bytes", info.Size), zap.String("sha256", info.SHA256))
	c.JSON(http.StatusCreated, info)
}
