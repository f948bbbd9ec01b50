package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iamasit07/4-in-a-row/arena/internal/config"
	"github.com/iamasit07/4-in-a-row/arena/internal/repository/postgres"
	"github.com/iamasit07/4-in-a-row/arena/internal/repository/redis"
	"github.com/iamasit07/4-in-a-row/arena/internal/sandbox"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/account"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/catalog"
	"github.com/iamasit07/4-in-a-row/arena/internal/service/match"
	transportHttp "github.com/iamasit07/4-in-a-row/arena/internal/transport/http"
	"github.com/iamasit07/4-in-a-row/arena/internal/transport/websocket"
	"github.com/iamasit07/4-in-a-row/arena/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()
	logger := newLogger(cfg)
	defer logger.Sync()

	ctx := context.Background()

	// 1. Database
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:       cfg.DBMaxOpenConns,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
	})
	if err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}
	defer db.Close()

	logger.Info("running database migrations")
	if err := postgres.RunMigrations(ctx, db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// 2. Repositories (Persistence Layer)
	userRepo := postgres.NewUserRepo(db)
	variantRepo := postgres.NewVariantRepo(db)
	agentRepo := postgres.NewAgentRepo(db)

	// 2b. Redis is optional
	var cache catalog.Cache
	if redisCache, err := redis.Connect(ctx, cfg.RedisURL, cfg.RedisPassword, logger); err == nil {
		cache = redisCache
		defer redisCache.Close()
	}

	// 3. Services (Business Logic Layer)
	limits := sandbox.Limits{Timeout: cfg.AgentTimeout, MemoryPages: cfg.AgentMemoryPages}
	accounts := account.NewService(userRepo, auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL), logger)
	variants := catalog.NewService(variantRepo, cache, logger)
	matches, err := match.NewService(variants, agentRepo, match.Config{
		Limits:         limits,
		MatchTimeout:   cfg.MatchTimeout,
		AgentCacheSize: cfg.AgentCacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("match service", zap.Error(err))
	}

	// 4. Handlers (API Layer)
	wsHandler := websocket.NewHandler(websocket.NewConnectionManager(), matches, accounts, cfg.AllowedOrigins, logger)
	router := transportHttp.NewRouter(transportHttp.RouterDeps{
		Auth:           transportHttp.NewAuthHandler(accounts),
		Variants:       transportHttp.NewVariantHandler(variants),
		Agents:         transportHttp.NewAgentHandler(agentRepo, limits, cfg.MaxArtifactBytes, logger),
		Matches:        transportHttp.NewMatchHandler(matches),
		Stream:         wsHandler.Serve,
		Tokens:         accounts,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// running matches would otherwise hold their requests open
	matches.Live().CancelAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	if err := matches.Close(shutdownCtx); err != nil {
		logger.Warn("match service close", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}
