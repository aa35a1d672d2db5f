// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"budget-assistant/internal/api"
	"budget-assistant/internal/common/config"
	"budget-assistant/internal/common/database"
	"budget-assistant/internal/common/genai"
	"budget-assistant/internal/common/logger"
	"budget-assistant/internal/common/observability"
	"budget-assistant/internal/services/conversation"
	"budget-assistant/internal/services/facts"

	goredis "github.com/redis/go-redis/v9"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting budget-assistant server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init app database (sessions/conversations) with retry ---
	var appDB *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		appDB, err = database.NewPostgres(cfg.Database.App)
		if err != nil {
			return err
		}
		return appDB.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "app database connection")

	if err != nil {
		zapLog.Fatal("app database failed after retries", zap.Error(err))
	}
	defer appDB.Close()
	zapLog.Info("App database connected successfully")

	// --- Init platform database (business data, read-only) with retry ---
	var platformDB *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		platformDB, err = database.NewPostgres(cfg.Database.Platform)
		if err != nil {
			return err
		}
		return platformDB.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "platform database connection")

	if err != nil {
		zapLog.Fatal("platform database failed after retries", zap.Error(err))
	}
	defer platformDB.Close()
	zapLog.Info("Platform database connected successfully")

	// --- Init Redis (optional, session locks only) ---
	var redisClient *goredis.Client
	if cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			return err
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			// Locks are best-effort; the row lock in the store still
			// guarantees consistency.
			zapLog.Warn("redis unavailable, continuing without session locks", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Init model client ---
	generator := genai.New(cfg.GenAI, log)
	zapLog.Info("GenAI client initialized", zap.String("model", cfg.GenAI.Model))

	// --- Wire services ---
	store := conversation.NewStore(appDB.GetDB(), log)
	aggregator := facts.NewAggregator(platformDB.GetDB(), log)
	orchestrator := conversation.NewOrchestrator(store, aggregator, generator, redisClient, log)

	server := api.NewServer(orchestrator, store, aggregator, generator, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      withTurnMetrics(obs, server.Routes()),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Server stopped gracefully")
}

// withTurnMetrics records otel turn counters/durations around the chat routes.
func withTurnMetrics(obs *observability.Observability, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/chat/") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		status := "success"
		if rec.status >= http.StatusBadRequest {
			status = "error"
		}
		obs.RecordTurnProcessed(r.Context(), status)
		obs.RecordTurnDuration(r.Context(), time.Since(start), status)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
