// closetctl is the command line companion to the closetpanel daemon. It
// talks to the stylist backend directly and shares the daemon's local
// database, so sessions established here are picked up by the panel.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/spf13/cobra"

	sqliteadapter "github.com/closetpanel/closetpanel/internal/adapter/driven/sqlite"
	"github.com/closetpanel/closetpanel/internal/adapter/driven/stylist"
	"github.com/closetpanel/closetpanel/internal/application"
	"github.com/closetpanel/closetpanel/internal/config"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	db          *sqliteadapter.DB
	sessionSvc  *application.SessionService
	wardrobeSvc *application.WardrobeService
	stylistSvc  *application.StylistService
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// bootstrap wires the same adapter stack as the daemon, minus the HTTP
// server and the background sync loop.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		db.Close()
		return nil, err
	}

	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	sessionStore := sqliteadapter.NewSessionRepo(credentialStore)

	var sessionSvc *application.SessionService
	client := stylist.NewClient(cfg.APIBaseURL, sessionStore, func() {
		sessionSvc.HandleUnauthorized()
	})
	client.Timeout = cfg.RequestTimeout
	client.UploadTimeout = cfg.UploadTimeout

	sessionSvc = application.NewSessionService(client, sessionStore)

	return &app{
		db:          db,
		sessionSvc:  sessionSvc,
		wardrobeSvc: application.NewWardrobeService(client, sqliteadapter.NewWardrobeRepo(db), cfg.SyncInterval),
		stylistSvc:  application.NewStylistService(client, sqliteadapter.NewChatRepo(db)),
	}, nil
}

var rootCmd = &cobra.Command{
	Use:           "closetctl",
	Short:         "Manage your closetpanel wardrobe from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Quiet structured logs so command output stays readable.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(listCmd, syncCmd, analyzeCmd)
	rootCmd.AddCommand(chatCmd, recommendCmd, tryOnCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
