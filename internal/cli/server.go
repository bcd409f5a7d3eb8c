package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/infra/file"
	"daily-quiz-service/internal/infra/memory"
	pgstore "daily-quiz-service/internal/infra/postgres"
	redisstore "daily-quiz-service/internal/infra/redis"
	"daily-quiz-service/internal/logger"
	transport "daily-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("quiz.timezone: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	store, catalogName, ledgerName, cleanup, err := openDocumentStore(ctx, cfg, redisClient, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 24*time.Hour)
	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, sessionTTL))
	} else {
		sessions = memory.NewSessionStore(sessionTTL)
	}

	service := app.NewQuizService(app.Options{
		ExpiryDelay:         cfg.ExpiryDelay(),
		Categories:          cfg.Quiz.Categories,
		Location:            loc,
		CatalogName:         catalogName,
		LedgerName:          ledgerName,
		LedgerRetentionDays: cfg.Ledger.RetentionDays,
	}, store, sessions, log)
	defer service.Close()

	if err := service.Warm(ctx); err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if _, err := service.Recover(ctx); err != nil {
		return fmt.Errorf("recover expiries: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)
	transport.NewAdminHandler(service, log).Register(mux)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz service",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage.Driver),
			zap.Duration("expiry_delay", cfg.ExpiryDelay()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if cfg.Ledger.RetentionDays > 0 {
		pruner := app.NewLedgerPruner(service, cfg.Ledger.PruneSchedule, loc, log)
		g.Go(func() error { return pruner.Start(gctx) })
	}
	return g.Wait()
}

// openDocumentStore picks the backend named by storage.driver. The file driver keeps
// the configured paths; the others key documents by base name.
func openDocumentStore(ctx context.Context, cfg config.Config, redisClient *redis.Client, log *zap.Logger) (app.DocumentStore, string, string, func(), error) {
	catalog, ledger := filepath.Base(cfg.Storage.Catalog), filepath.Base(cfg.Storage.Ledger)
	noop := func() {}

	switch cfg.Storage.Driver {
	case "file":
		return file.NewDocumentStore("."), cfg.Storage.Catalog, cfg.Storage.Ledger, noop, nil
	case "memory":
		log.Warn("memory storage selected; documents are lost on exit")
		return memory.NewDocumentStore(), catalog, ledger, noop, nil
	case "redis":
		if redisClient == nil {
			return nil, "", "", nil, fmt.Errorf("storage.driver redis requires redis.addr")
		}
		return redisstore.NewDocumentStore(redisClient), catalog, ledger, noop, nil
	case "postgres":
		if err := runMigrations(ctx, cfg.Postgres.URL, log); err != nil {
			return nil, "", "", nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, "", "", nil, err
		}
		return pgstore.NewDocumentStore(pool), catalog, ledger, pool.Close, nil
	}
	return nil, "", "", nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
