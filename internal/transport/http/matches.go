package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/referee"
)

type MatchRunner interface {
	Run(ctx context.Context, req match.Request, observer referee.Observer) (*match.Report, error)
	Live() *match.Registry
}

type MatchHandler struct {
	Matches MatchRunner
}

func NewMatchHandler(matches MatchRunner) *MatchHandler {
	return &MatchHandler{Matches: matches}
}

// Run plays a match synchronously and returns its report. Dropping the
// request cancels the match.
func (h *MatchHandler) Run(c *gin.Context) {
	var req match.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.Variant == "" {
		req.Variant = "classic"
	}

	report, err := h.Matches.Run(c.Request.Context(), req, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetLiveMatches returns every match still being played
func (h *MatchHandler) GetLiveMatches(c *gin.Context) {
	c.JSON(http.StatusOK, h.Matches.Live().List())
}

func (h *MatchHandler) Cancel(c *gin.Context) {
	if !h.Matches.Live().Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}
	c.Status(http.StatusAccepted)
}
