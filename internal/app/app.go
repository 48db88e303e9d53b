package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hieunguyen/vocabdeck/internal/adapter/pdfstore"
	"github.com/hieunguyen/vocabdeck/internal/adapter/postgres"
	credentialrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/credential"
	deckrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/deck"
	highlightrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/highlight"
	settingrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/setting"
	wordrepo "github.com/hieunguyen/vocabdeck/internal/adapter/postgres/word"
	"github.com/hieunguyen/vocabdeck/internal/adapter/provider/claude"
	"github.com/hieunguyen/vocabdeck/internal/auth"
	"github.com/hieunguyen/vocabdeck/internal/config"
	"github.com/hieunguyen/vocabdeck/internal/gate"
	decksvc "github.com/hieunguyen/vocabdeck/internal/service/deck"
	"github.com/hieunguyen/vocabdeck/internal/service/enrichment"
	highlightsvc "github.com/hieunguyen/vocabdeck/internal/service/highlight"
	"github.com/hieunguyen/vocabdeck/internal/service/keypool"
	"github.com/hieunguyen/vocabdeck/internal/transport/middleware"
	"github.com/hieunguyen/vocabdeck/internal/transport/rest"
)

// Run is the application entry point. It wires configuration, the
// database, services, and the HTTP server, then blocks until ctx is
// cancelled and performs a graceful shutdown.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	// Database.
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)

	// Repositories.
	credRepo := credentialrepo.New(pool)
	setRepo := settingrepo.New(pool)
	dRepo := deckrepo.New(pool)
	wRepo := wordrepo.New(pool)
	hRepo := highlightrepo.New(pool)

	// Blob store for uploaded PDFs.
	pdfStore, err := pdfstore.New(cfg.Storage.PDFDir)
	if err != nil {
		return fmt.Errorf("init pdf store: %w", err)
	}

	// AI dispatch stack: gate -> key pool -> dispatcher -> façade.
	slotGate := gate.New(cfg.AI.DefaultConcurrency)
	keyPool := keypool.NewService(logger, credRepo, setRepo, slotGate, cfg.AI.DefaultConcurrency)
	if err := keyPool.Load(ctx); err != nil {
		return fmt.Errorf("load credential pool: %w", err)
	}

	aiClient := claude.New(cfg.AI.Model, logger)
	registry := enrichment.NewRegistry()
	dispatcher := enrichment.NewDispatcher(logger, keyPool, slotGate, aiClient, registry, cfg.AI.RequestTimeout)
	enrichmentService := enrichment.NewService(logger, dispatcher)

	// Content services.
	deckService := decksvc.NewService(logger, dRepo, wRepo, txm)
	highlightService := highlightsvc.NewService(logger, hRepo, txm)

	// Auth.
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	// HTTP handlers and routes.
	mux := rest.NewRouter(rest.Handlers{
		Health: rest.NewHealthHandler(pool, BuildVersion()),
		AI:     rest.NewAIHandler(enrichmentService, keyPool, logger),
		Keys:   rest.NewKeysHandler(keyPool, logger),
		Decks:  rest.NewDeckHandler(deckService, logger),
		PDFs:   rest.NewPDFHandler(pdfStore, highlightService, logger),
	})

	rateLimiter := middleware.NewRateLimiter(time.Minute)
	defer rateLimiter.Stop()

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		rateLimiter.Limit(cfg.Server.RateLimitPerMin),
		middleware.Auth(jwtManager),
	)(mux)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
