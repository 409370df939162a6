package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"motionsafe/internal/config"
	"motionsafe/internal/logger"
	"motionsafe/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "motionsafe")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	safetyService, err := service.NewSafetyService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create safety service",
			zap.Error(err),
		)
	}
	defer safetyService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serviceErrChan := make(chan error, 1)
	go func() {
		serviceErrChan <- safetyService.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
		// wait for the session to flush its summary
		if err := <-serviceErrChan; err != nil {
			log.Error("Shutdown error", zap.Error(err))
		}
	case err := <-serviceErrChan:
		if err != nil {
			log.Fatal("Service error",
				zap.Error(err),
			)
		}
	}

	log.Info("Safety service stopped")
}
