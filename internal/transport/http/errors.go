package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/4-in-a-row/arena/internal/domain"
	"github.com/iamasit07/4-in-a-row/arena/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/account"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/referee"
)

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, postgres.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, postgres.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidVariant),
		errors.Is(err, match.ErrBadRequest),
		errors.Is(err, account.ErrInvalidUsername),
		errors.Is(err, account.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, sandbox.ErrLoad):
		return http.StatusUnprocessableEntity
	case errors.Is(err, referee.ErrAborted):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		c.Error(err)
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
