package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"novaremote/api"
	"novaremote/config"
	"novaremote/handlers"
	"novaremote/services/backup"
	user_settings "novaremote/services/user_settings"
)

const settingsFileName = "settings.json"

type backend struct {
	handler http.Handler
	addr    string
}

// newBackend prepares the file-backed settings API rooted at dir. addr falls
// back to the server section of the stored settings.
func newBackend(ctx context.Context, cfg serveConfig) (*backend, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("serve: data directory is required")
	}

	manager := config.NewManager(filepath.Join(dir, settingsFileName))
	if err := manager.EnsureDir(); err != nil {
		return nil, err
	}
	settings, err := manager.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	users, err := user_settings.NewService(dir)
	if err != nil {
		return nil, err
	}

	opts := api.Options{}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts.APIKey = func() string { return key }
	}
	if cfg.WritesPerMinute > 0 {
		opts.Limiter = api.NewWriteLimiter(ctx, rate.Every(time.Minute/time.Duration(cfg.WritesPerMinute)), cfg.WritesPerMinute)
		opts.Limiter.TrustProxyHeaders = cfg.TrustProxyHeaders
	}

	router := api.NewRouter(api.Handlers{
		Settings:     handlers.NewSettingsHandler(manager),
		UserSettings: handlers.NewUserSettingsHandler(users),
	}, opts)

	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = net.JoinHostPort(settings.Server.Host, strconv.Itoa(settings.Server.Port))
	}
	return &backend{handler: router, addr: addr}, nil
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var dir, addr, apiKey string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a file-backed settings backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config.Serve
			if cmd.Flags().Changed("dir") {
				cfg.Dir = dir
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
			}

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			b, err := newBackend(runCtx, cfg)
			if err != nil {
				return err
			}
			if ctx.config.Backup.SnapshotOnServe {
				snapshotOnStart(cfg.Dir, ctx.config.Backup.Keep)
			}
			return serve(runCtx, b, time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory holding settings.json and user_settings.json")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to the stored server host and port)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Require this key on /api requests")
	return cmd
}

// snapshotOnStart archives the documents the server is about to own.
// Failures are logged; they never keep the server from starting.
func snapshotOnStart(dir string, keep int) {
	svc, err := backup.NewService(dir)
	if err != nil {
		log.Printf("[serve] startup snapshot skipped: %v", err)
		return
	}
	if _, err := svc.Create(backup.TypeStartup); err != nil {
		log.Printf("[serve] startup snapshot failed: %v", err)
		return
	}
	if _, err := svc.Prune(keep); err != nil {
		log.Printf("[serve] pruning snapshots failed: %v", err)
	}
}

func serve(ctx context.Context, b *backend, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              b.addr,
		Handler:           b.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s", b.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	log.Printf("[serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
