package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/saftree/storagebridge/internal/config"
	"github.com/saftree/storagebridge/internal/logging"
	"github.com/saftree/storagebridge/internal/server"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadOrDefault()

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log = logging.NewDefault()
	}
	defer func() { _ = log.Sync() }()

	srv, err := server.New(cfg, log, server.Options{})
	if err != nil {
		log.Fatal("failed to assemble server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run(cfg.Server.Host + ":" + cfg.Server.Port)
	}()

	select {
	case <-sigChan:
		log.Info("shutting down")
		if err := srv.Close(); err != nil {
			log.Warn("shutdown error", zap.Error(err))
		}
	case err := <-errChan:
		log.Fatal("server error", zap.Error(err))
	}
}
