package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"vetstudy-backend/internal/config"
	"vetstudy-backend/internal/database"
	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/handlers"
	"vetstudy-backend/internal/llm"
	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/middleware"
	"vetstudy-backend/internal/repository"
	"vetstudy-backend/internal/router"
	"vetstudy-backend/internal/services"
	"vetstudy-backend/internal/websocket"
	"vetstudy-backend/internal/worker"
)

// generationSlack leaves room for one quick failed attempt and the backoff
// before a retry.
const generationSlack = 20 * time.Second

func main() {
	// ──── Step 1: Configuration & Logging ────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	log.Info("starting vetstudy backend", "env", cfg.Env, "provider", cfg.LLMProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: PostgreSQL ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres connection failed", "error", err.Error())
	}
	defer pool.Close()
	log.Info("postgres connected")

	if err := database.RunMigrations(pool, cfg.MigrationsPath, log); err != nil {
		log.Fatal("database migration failed", "error", err.Error())
	}
	log.Info("database migrations applied")

	// ──── Step 3: Redis ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatal("redis connection failed", "error", err.Error())
	}
	defer redisClients.Close()
	log.Info("redis connected")

	// ──── Step 4: Completion Provider ────
	profiles, err := generation.LoadProfiles()
	if err != nil {
		log.Fatal("failed to load generation profiles", "error", err.Error())
	}

	// One generation, retries included, must finish before the response
	// write deadline.
	budget := profiles.MaxTimeout() + generationSlack
	completer, closeProvider, err := newCompleter(ctx, cfg, budget, log)
	if err != nil {
		log.Fatal("completion provider initialization failed", "error", err.Error())
	}
	defer closeProvider()
	var opts []generation.Option
	if cfg.LLMModel != "" {
		opts = append(opts, generation.WithModel(cfg.LLMModel))
	}
	pipeline := generation.NewPipeline(completer, profiles, log, opts...)
	log.Info("generation pipeline ready", "types", len(generation.ContentTypes()))

	// ──── Step 5: Repositories & Services ────
	userRepo := repository.NewUserRepo(pool)
	chatRepo := repository.NewChatHistoryRepo(pool)
	flashcardRepo := repository.NewFlashcardRepo(pool)

	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL, log)
	passwordService := services.NewPasswordService(userRepo, services.NewRedisResetStore(redisClients.Queue), emailService, log)
	deckService := services.NewDeckService(flashcardRepo)
	jobStore := worker.NewStore(redisClients.Queue)

	// ──── Step 6: HTTP ────
	wsHub := websocket.NewHub(redisClients.PubSub, jobStore, log)
	r := router.New(
		jwtAuth,
		middleware.NewRateLimiter(ctx, 30, time.Minute),
		middleware.NewRateLimiter(ctx, 10, time.Minute),
		router.Handlers{
			Generation:   handlers.NewGenerationHandler(pipeline, deckService, log),
			StudyPlanPDF: handlers.NewStudyPlanPageHandler(log),
			Jobs:         handlers.NewJobHandler(jobStore, log),
			ChatHistory:  handlers.NewChatHistoryHandler(chatRepo),
			Flashcards:   handlers.NewFlashcardHandler(flashcardRepo),
			Password:     handlers.NewPasswordHandler(passwordService),
		},
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: budget + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ──── Step 7: Run ────
	workerPool := worker.NewPool(jobStore, pipeline, deckService, cfg.WorkerCount, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return workerPool.Run(gctx)
	})
	g.Go(func() error {
		log.Info("vetstudy backend ready", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err.Error())
		os.Exit(1)
	}
}

// newCompleter builds the provider client for cfg, wrapped in rate limiting
// and retries. A missing or rejected key is only a warning: every generation
// request then reports a configuration error.
func newCompleter(ctx context.Context, cfg *config.Config, budget time.Duration, log *logger.Logger) (llm.Completer, func(), error) {
	var (
		base    llm.Completer
		check   func(context.Context) error
		closeFn = func() {}
	)

	switch cfg.LLMProvider {
	case "gemini":
		gc, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		base, check = gc, gc.Check
		closeFn = func() { gc.Close() }
	default:
		c := llm.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
		base, check = c, c.Check
	}

	if err := check(ctx); err != nil {
		log.Warn("completion provider check failed", "provider", cfg.LLMProvider, "error", err.Error())
	}

	limited := llm.NewLimited(base, cfg.LLMRequestsPerMin)
	retrying := llm.NewRetrying(limited, cfg.LLMMaxRetries, 2*time.Second, log)
	retrying.Budget = budget
	return retrying, closeFn, nil
}
