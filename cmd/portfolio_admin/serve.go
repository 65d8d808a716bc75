package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/auth"
	"github.com/jonathan/portfolio-admin/internal/config"
	"github.com/jonathan/portfolio-admin/internal/server"
	"github.com/jonathan/portfolio-admin/internal/site"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin server",
	Long:  `Serve the public page, the current content.json and the admin API on one address.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	sessionConfig, err := config.NewSessionConfig()
	if err != nil {
		return fmt.Errorf("failed to create session config: %w", err)
	}
	if sessionConfig.Ephemeral {
		logger.Warn("SESSION_SECRET is not set; sessions end when the server restarts")
	}

	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	st := newStore(kv)
	gate := auth.NewGate(cfg.AdminsPath, logger)
	if err := server.Prepare(ctx, st, gate, logger); err != nil {
		return err
	}

	renderer, err := site.New(cfg.TemplatePath)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:           addr,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		StaticDir:      cfg.StaticDir,
	}, server.Deps{
		Store:    st,
		Gate:     gate,
		Sessions: auth.NewSessions(sessionConfig, kv),
		Renderer: renderer,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("admin server ready", zap.String("addr", addr), zap.String("publish_url", cfg.PublishURL))
	return srv.Run(ctx)
}

// contextOrBackground guards commands executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
