package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spotx/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the web interface.
//
// The configured redirect_uri must point at this server's /callback route
// for browser logins to complete.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDB(); err != nil {
		return err
	}

	app := server.NewApp(r.config, r.tokens, r.runs, r.logger)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	app.Register(router)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("serving web interface", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
