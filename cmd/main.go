package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Vovarama1992/autoengine-chat/internal/ai"
	"github.com/Vovarama1992/autoengine-chat/internal/chat"
	"github.com/Vovarama1992/autoengine-chat/internal/config"
	"github.com/Vovarama1992/autoengine-chat/internal/dialogue"
	"github.com/Vovarama1992/autoengine-chat/internal/logger"
	"github.com/Vovarama1992/autoengine-chat/internal/metrics"
	"github.com/Vovarama1992/autoengine-chat/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Model ---
	aiClient, provider := ai.New(ctx, ai.Options{
		Provider:      cfg.AIProvider,
		OpenAIKey:     cfg.OpenAIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		GeminiKey:     cfg.GeminiKey,
		GeminiModel:   cfg.GeminiModel,
		Temperature:   float32(cfg.ModelTemperature),
		MaxTokens:     cfg.ModelMaxTokens,
	}, lg)
	if closer, ok := aiClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if rdb := openRedis(ctx, cfg.RedisURL, lg); rdb != nil {
		defer rdb.Close()
		aiClient = ai.NewCachedAI(aiClient, rdb, cfg.CacheTTL, lg)
	}

	// --- Audit log ---
	var repo chat.Repo = chat.NopRepo{}
	if db := openDB(ctx, cfg.DatabaseURL, lg); db != nil {
		defer db.Close()
		repo = chat.NewRepo(db)
	}

	// --- Engine ---
	engine := dialogue.NewEngine(
		dialogue.Policy{RequireName: cfg.RequireName, RequirePhoneForClinic: cfg.RequirePhoneClinic},
		dialogue.NewComposer(cfg.CTAURL),
	)
	engine.HistoryWindow = cfg.HistoryWindow
	engine.UserTurns = cfg.HistoryUserTurns

	chatService := chat.NewService(engine, aiClient, repo, chat.Options{
		Provider:          provider,
		ModelTimeout:      cfg.ModelTimeout,
		ContextByteBudget: cfg.ContextByteBudget,
	}, lg)
	chatHandler := chat.NewHandler(chatService, lg)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Origins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, lg)
	go limiter.Run(ctx, time.Minute, 10*time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		chat.RegisterRoutes(r, chatHandler)
	})
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("listening", zap.String("port", cfg.Port), zap.String("provider", provider))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server error", zap.Error(err))
	}
}

func openRedis(ctx context.Context, url string, lg *zap.Logger) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		lg.Warn("invalid REDIS_URL, cache disabled", zap.Error(err))
		return nil
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		lg.Warn("redis unreachable, cache disabled", zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func openDB(ctx context.Context, dsn string, lg *zap.Logger) *sql.DB {
	if dsn == "" {
		return nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		lg.Warn("db open failed, audit disabled", zap.Error(err))
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		lg.Warn("db ping failed, audit disabled", zap.Error(err))
		_ = db.Close()
		return nil
	}
	if err := chat.EnsureSchema(pingCtx, db); err != nil {
		lg.Warn("schema setup failed, audit disabled", zap.Error(err))
		_ = db.Close()
		return nil
	}
	return db
}
