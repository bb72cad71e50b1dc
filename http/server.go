package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/service"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the local API on port until ctx is cancelled or the listener
// fails, then shuts the echo server down gracefully.
func Serve(ctx context.Context, svc service.Service, port int) error {
	e := echo.New()
	httpSvc := NewHttpService(svc, svc.GetEventPublisher())
	httpSvc.RegisterSharedRoutes(e)

	serverErr := make(chan error, 1)
	go func() {
		logger.Logger.Info().Int("port", port).Msg("Starting echo server")
		if err := e.Start(fmt.Sprintf(":%v", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error().Err(err).Msg("echo server failed to start")
			serverErr <- err
		}
		close(serverErr)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serverErr:
	}

	logger.Logger.Info().Msg("Shutting down echo server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Logger.Error().Err(shutdownErr).Msg("Failed to shutdown echo server")
	}
	logger.Logger.Info().Msg("Echo server exited")
	return err
}
