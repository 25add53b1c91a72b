package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/qbusiness"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/communityempower/ai-gateway/config"
	"github.com/communityempower/ai-gateway/internal/auth"
	"github.com/communityempower/ai-gateway/internal/chat"
	"github.com/communityempower/ai-gateway/internal/dispatch"
	"github.com/communityempower/ai-gateway/internal/history"
	"github.com/communityempower/ai-gateway/internal/provider"
	"github.com/communityempower/ai-gateway/internal/provider/amazonq"
	"github.com/communityempower/ai-gateway/internal/provider/bedrock"
	"github.com/communityempower/ai-gateway/internal/provider/gemini"
	"github.com/communityempower/ai-gateway/internal/provider/groq"
	"github.com/communityempower/ai-gateway/internal/seeder"
	"github.com/communityempower/ai-gateway/internal/telemetry"
	"github.com/communityempower/ai-gateway/pkg/ratelimit"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Init telemetry
	shutdownTracer, err := telemetry.InitTracer("ai-gateway", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	// 3. Connect PostgreSQL
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}
	log.Println("PostgreSQL connected")

	// 4. Connect Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to ping redis: %v", err)
	}
	log.Println("Redis connected")

	// 5. Init auth
	authStore := auth.NewPostgresStore(pool)
	authMiddleware := auth.NewMiddleware(authStore, rdb)

	// 6. Init history store
	historyStore := history.NewPostgresStore(pool)

	// 7. Init rate limiter
	limiter := ratelimit.NewLimiter(rdb, cfg.DefaultRateLimitRPM)

	// 8. Init providers in cascade priority order
	qProvider, bedrockProvider := buildAWSProviders(ctx, cfg)
	providers := []provider.Provider{
		qProvider,
		bedrockProvider,
		groq.New(cfg.GroqAPIKey),
		gemini.New(cfg.GeminiAPIKey),
	}
	for _, p := range providers {
		state := "unavailable"
		if p.Available() {
			state = "available"
		}
		log.Printf("provider %s: %s", p.Name(), state)
	}

	// 9. Init dispatcher and handler
	tracer := otel.GetTracerProvider().Tracer("ai-gateway")
	dispatcher := dispatch.New(tracer, providers...)
	handler := chat.NewHandler(dispatcher, historyStore, limiter, tracer)

	// 10. Seed test API key if RUN_SEED=true
	if os.Getenv("RUN_SEED") == "true" {
		seeder.SeedTestAPIKey(ctx, authStore)
	}

	// 11. Init Chi router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Public routes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"ai-gateway"}`))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/v1/chat", handler.HandleChat)
		r.Post("/v1/agent/chat", handler.HandleAgentChat)
		r.Post("/v1/sentiment", handler.HandleSentiment)
		r.Get("/v1/recommendations", handler.HandleRecommendations)
		r.Get("/v1/history", handler.HandleHistory)
		r.Get("/v1/models", handler.HandleModels)
		r.Get("/v1/status", handler.HandleStatus)
	})

	// 12. Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Community Assist AI Gateway starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// buildAWSProviders constructs the Amazon Q and Bedrock providers. Without
// static AWS credentials both come back unavailable and the cascade skips
// them.
func buildAWSProviders(ctx context.Context, cfg *config.Config) (*amazonq.QProvider, *bedrock.BedrockProvider) {
	if !cfg.HasAWSCredentials() {
		log.Println("AWS credentials not found; Amazon Q and Bedrock disabled")
		return amazonq.New(nil, cfg.QApplicationID), bedrock.New(nil, cfg.BedrockModel)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		),
	)
	if err != nil {
		log.Printf("failed to load AWS config, disabling AWS providers: %v", err)
		return amazonq.New(nil, cfg.QApplicationID), bedrock.New(nil, cfg.BedrockModel)
	}

	return amazonq.New(qbusiness.NewFromConfig(awsCfg), cfg.QApplicationID),
		bedrock.New(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModel)
}
