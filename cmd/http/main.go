package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/flokiorg/appinion/http"
	"github.com/flokiorg/appinion/logger"
	"github.com/flokiorg/appinion/service"
)

func main() {
	logger.Logger.Info().Msg("Appinion starting in HTTP mode")

	osSignalChannel := make(chan os.Signal, 1)
	signal.Notify(osSignalChannel, os.Interrupt, syscall.SIGTERM, syscall.SIGPIPE)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			sig := <-osSignalChannel
			logger.Logger.Info().Interface("signal", sig).Msg("Received OS signal")

			if sig == syscall.SIGPIPE {
				logger.Logger.Warn().Interface("signal", sig).Msg("Ignoring SIGPIPE signal")
				continue
			}

			cancel()
			return
		}
	}()

	svc, err := service.NewService(ctx)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to create service")
		return
	}

	err = http.Serve(ctx, svc, svc.GetConfig().GetEnv().Port)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server stopped with error")
	}

	svc.Shutdown()
	logger.Logger.Info().Msg("Service exited")
}
