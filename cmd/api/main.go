package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom/inventory-api/internal/config"
	"github.com/stockroom/inventory-api/internal/httpx"
	"github.com/stockroom/inventory-api/internal/logger"
	"github.com/stockroom/inventory-api/internal/metrics"
	"github.com/stockroom/inventory-api/internal/modules/inventory"
	"github.com/stockroom/inventory-api/internal/modules/reorder"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "inventory-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// ── Storage ─────────────────────────────────────────────
	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	inventoryService := inventory.NewService(repo,
		inventory.WithLogger(log.With("module", "inventory")),
		inventory.WithStockObserver(m))
	if cfg.SeedDemoData {
		if err := inventoryService.Seed(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	// ── Reorder suggestions ─────────────────────────────────
	gemini := reorder.NewGeminiClient(reorder.GeminiConfig{
		APIKey:     cfg.Gemini.APIKey,
		BaseURL:    cfg.Gemini.BaseURL,
		Model:      cfg.Gemini.Model,
		Timeout:    cfg.Reorder.Timeout,
		MaxRetries: cfg.Reorder.MaxRetries,
	})
	if cfg.Gemini.APIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, reorder suggestions will fail")
	}
	reorderService := reorder.NewService(inventoryService, gemini,
		reorder.Config{Timeout: cfg.Reorder.Timeout, DefaultLeadTimeDays: cfg.Reorder.DefaultLeadTimeDays},
		reorder.WithLogger(log.With("module", "reorder")),
		reorder.WithObserver(m))

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpx.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", m.Handler())

	inventory.NewHandler(inventoryService, log).RegisterRoutes(router)
	reorder.NewHandler(reorderService).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, cfg.ShutdownTimeout, log)
}

// openStore returns the configured backing and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (inventory.Repository, func(), error) {
	if cfg.StoreBackend != config.BackendPostgres {
		log.Info("using in-memory store")
		return inventory.NewMemoryRepository(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := inventory.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("connected to postgres")
	return inventory.NewPostgresRepository(db), func() {
		if err := db.Close(); err != nil {
			log.Error("close database", "error", err)
		}
	}, nil
}

func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("inventory API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down, draining in-flight requests", "timeout", shutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
