// cmd/business-mcp/app.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"business-assistant/internal/bootstrap"
	"business-assistant/internal/common/config"
	"business-assistant/internal/common/logger"
)

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	return cfg, nil
}

// start loads configuration and builds the services. The returned context is
// cancelled on SIGINT or SIGTERM.
func start(parent context.Context) (context.Context, *bootstrap.Services, logger.Logger, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("Starting business-mcp", map[string]interface{}{
		"version": cfg.App.Version,
		"primary": cfg.Primary.Driver,
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)

	services, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		stop()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		services.Close()
		stop()
	}
	return ctx, services, log, cleanup, nil
}
