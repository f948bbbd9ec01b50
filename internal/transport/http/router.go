package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/transport/http/middleware"
)

type RouterDeps struct {
	Auth           *AuthHandler
	Variants       *VariantHandler
	Agents         *AgentHandler
	Matches        *MatchHandler
	Stream         gin.HandlerFunc // websocket endpoint, optional
	Tokens         middleware.TokenValidator
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(d.AllowedOrigins, d.Logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Routes
	router.POST("/api/auth/register", d.Auth.Register)
	router.POST("/api/auth/login", d.Auth.Login)
	router.GET("/api/variants", d.Variants.List)
	router.GET("/api/variants/:name", d.Variants.Get)
	router.GET("/api/agents", d.Agents.List)
	router.GET("/api/matches/live", d.Matches.GetLiveMatches)

	// Protected Routes
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(d.Tokens))
	{
		protected.POST("/matches", d.Matches.Run)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(d.Tokens), middleware.RequireAdmin())
	{
		admin.POST("/variants", d.Variants.Create)
		admin.POST("/agents", d.Agents.Upload)
		admin.DELETE("/matches/:id", d.Matches.Cancel)
	}

	// WebSocket Route (auth handled inside the WS handler itself)
	if d.Stream != nil {
		router.GET("/ws/matches", d.Stream)
	}

	return router
}
