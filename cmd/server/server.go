package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// serve runs the API and socket listeners until ctx is canceled or either
// fails, then shuts both down within the configured timeout and releases the
// application resources.
func (app *application) serve(ctx context.Context, router, socketRouter http.Handler) error {
	servers := []*http.Server{
		{
			Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		{
			Addr:              fmt.Sprintf(":%d", app.config.Socket.Port),
			Handler:           socketRouter,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			app.logger.Info("starting listener", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listener %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout())
		defer cancel()

		// Sockets are hijacked connections that Shutdown does not track.
		app.sockets.CloseAll()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	app.cleanup()
	if err != nil {
		app.logger.Error("server stopped with error", "error", err)
		return err
	}

	app.logger.Info("server shutdown completed")
	return nil
}
