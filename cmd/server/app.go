package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ketaiwk/10xcards/internal/api"
	"github.com/Ketaiwk/10xcards/internal/config"
	"github.com/Ketaiwk/10xcards/internal/generation"
	"github.com/Ketaiwk/10xcards/internal/platform/gemini"
	"github.com/Ketaiwk/10xcards/internal/platform/openrouter"
	"github.com/Ketaiwk/10xcards/internal/platform/postgres"
	"github.com/Ketaiwk/10xcards/internal/platform/redis"
	"github.com/Ketaiwk/10xcards/internal/service"
	"github.com/Ketaiwk/10xcards/internal/service/auth"
	"github.com/Ketaiwk/10xcards/internal/task"
	"go.opentelemetry.io/otel"
)

// gotrueTimeout bounds each call to the hosted auth API.
const gotrueTimeout = 10 * time.Second

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	setService   service.FlashcardSetService
	cardService  service.FlashcardService
	accumulator  api.CardAccumulator
	authProvider auth.Provider

	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool

	// closers run in reverse order during cleanup.
	closers []func(context.Context) error
}

// newApplication wires every collaborator from the configuration. The
// database connection is opened by the caller.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	setStore := postgres.NewPostgresFlashcardSetStore(db, logger)
	cardStore := postgres.NewPostgresFlashcardStore(db, logger)

	gen, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	breaker := generation.NewBreakerGenerator(gen, generation.BreakerSettings{
		Name:        cfg.LLM.Provider,
		MaxFailures: cfg.LLM.BreakerFailures,
		OpenTimeout: cfg.LLM.BreakerTimeout,
	}, logger)
	app.accumulator = generation.NewAccumulator(breaker, logger,
		generation.WithDelay(cfg.Generation.Delay),
		generation.WithTracer(otel.Tracer("github.com/Ketaiwk/10xcards/generation")),
	)
	logger.Info("AI generator initialized",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", gen.Model()))

	app.authProvider, err = app.newAuthProvider(ctx)
	if err != nil {
		app.cleanup(ctx)
		return nil, err
	}

	app.setService, err = service.NewFlashcardSetService(setStore, nil, cfg.Generation.DefaultCardCount, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create flashcard set service: %w", err)
	}
	app.cardService, err = service.NewFlashcardService(db, setStore, cardStore, logger)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	if err := app.setupTaskRunner(); err != nil {
		app.cleanup(ctx)
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

// newGenerator builds the client of the configured AI provider.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	switch cfg.Provider {
	case "openrouter":
		gen, err := openrouter.NewGenerator(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenRouter generator: %w", err)
		}
		return gen, nil
	case "gemini":
		gen, err := gemini.NewGenerator(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini generator: %w", err)
		}
		return gen, nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}

// newAuthProvider builds the configured auth provider and its token
// denylist.
func (app *application) newAuthProvider(ctx context.Context) (auth.Provider, error) {
	cfg := app.config

	var denylist auth.Denylist = auth.NewMemoryDenylist()
	if cfg.Redis.Addr != "" {
		rd, err := redis.NewDenylist(ctx, cfg.Redis, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect token denylist: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return rd.Close() })
		denylist = rd
	} else {
		app.logger.Warn("redis not configured, revoked tokens are kept in memory")
	}

	switch cfg.Auth.Provider {
	case "gotrue":
		p, err := auth.NewGoTrueProvider(cfg.Auth, &http.Client{Timeout: gotrueTimeout}, denylist, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GoTrue provider: %w", err)
		}
		app.logger.Info("auth provider initialized", slog.String("provider", "gotrue"))
		return p, nil
	case "local":
		jwtService, err := auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		p, err := auth.NewLocalProvider(cfg.Auth, auth.LocalProviderDeps{
			DB:       app.db,
			Users:    postgres.NewPostgresUserStore(app.db, cfg.Auth.BCryptCost, app.logger),
			Resets:   postgres.NewPostgresResetTokenStore(app.db, app.logger),
			JWT:      jwtService,
			Verifier: auth.NewBcryptVerifier(),
			Denylist: denylist,
		}, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local auth provider: %w", err)
		}
		app.logger.Info("auth provider initialized",
			slog.String("provider", "local"),
			slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
		return p, nil
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
}

// setupTaskRunner starts the background generation workers and attaches
// the scheduler to the set service.
func (app *application) setupTaskRunner() error {
	app.taskQueue = task.NewTaskQueue(app.config.Generation.QueueSize, app.logger)

	scheduler, err := task.NewSetGenerationScheduler(app.taskQueue, task.SetGenerationDeps{
		Sets:        app.setService,
		Cards:       app.cardService,
		Accumulator: app.accumulator,
		Logger:      app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create generation scheduler: %w", err)
	}
	service.SetScheduler(app.setService, scheduler)

	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: app.config.Generation.WorkerCount,
	}, app.logger)
	app.workerPool.Start()
	return nil
}

// Run serves HTTP until ctx is canceled and then shuts everything down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops the workers and releases external resources. The database
// is closed by its owner.
func (app *application) cleanup(ctx context.Context) {
	if app.workerPool != nil {
		app.workerPool.Stop()
	}
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}

	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	if err := errors.Join(errs...); err != nil {
		app.logger.Error("error releasing resources", slog.String("error", err.Error()))
	}

	app.logger.Info("application shutdown completed")
}
