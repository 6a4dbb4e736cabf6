package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/closetpanel/closetpanel/internal/adapter/driven/sqlite"
	"github.com/closetpanel/closetpanel/internal/adapter/driven/stylist"
	httphandler "github.com/closetpanel/closetpanel/internal/adapter/driving/http"
	"github.com/closetpanel/closetpanel/internal/application"
	"github.com/closetpanel/closetpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_base_url", cfg.APIBaseURL,
		"sync_interval", cfg.SyncInterval,
	)
	if !cfg.HasSecretKey() {
		slog.Warn("CLOSETPANEL_SECRET_KEY not set, sessions will not persist across restarts")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire local stores.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	sessionStore := sqliteadapter.NewSessionRepo(credentialStore)
	wardrobeStore := sqliteadapter.NewWardrobeRepo(db)
	chatStore := sqliteadapter.NewChatRepo(db)

	// 6. Create the stylist client. The unauthorized callback closes over
	// sessionSvc, which is constructed right after the client.
	var sessionSvc *application.SessionService
	client := stylist.NewClient(cfg.APIBaseURL, sessionStore, func() {
		sessionSvc.HandleUnauthorized()
	})
	client.Timeout = cfg.RequestTimeout
	client.UploadTimeout = cfg.UploadTimeout

	sessionSvc = application.NewSessionService(client, sessionStore)

	// 7. Create and start the wardrobe sync service.
	wardrobeSvc := application.NewWardrobeService(client, wardrobeStore, cfg.SyncInterval)
	go wardrobeSvc.Start(ctx)

	// 7b. Create the stylist service.
	stylistSvc := application.NewStylistService(client, chatStore)

	// 8. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(wardrobeSvc, stylistSvc, sessionSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("closetpanel started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for HTTP server drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
