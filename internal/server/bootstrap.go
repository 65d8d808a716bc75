package server

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/portfolio-admin/internal/auth"
	"github.com/jonathan/portfolio-admin/internal/store"
)

// Prepare loads the current document and warms the admin list in parallel.
// Neither failure stops the server: without a document the editor starts
// empty and can retry load-default, and without an admin list the gate stays
// locked until it can be fetched.
func Prepare(ctx context.Context, st *store.Store, gate *auth.Gate, logger *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := st.LoadCurrent(ctx); err != nil {
			logger.Warn("no document loaded, starting empty", zap.Error(err))
			return ctx.Err()
		}
		return nil
	})
	g.Go(func() error {
		users, err := gate.Load(ctx)
		if err != nil {
			logger.Warn("admin list unavailable, login will fail until it loads", zap.Error(err))
			return nil
		}
		logger.Info("admin list loaded", zap.Int("users", len(users)))
		return nil
	})
	return g.Wait()
}
