// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"business-assistant/internal/bootstrap"
	"business-assistant/internal/common/camunda"
	"business-assistant/internal/common/config"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/timeparse"
	"business-assistant/internal/transport/httpapi"

	cbd "business-assistant/internal/workers/assistant/collect-business-data"
	pbq "business-assistant/internal/workers/assistant/parse-business-query"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("service wiring failed", zap.Error(err))
	}
	defer services.Close()

	// --- Init Zeebe Client ---
	zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	services.Checks["zeebe"] = zeebe.HealthCheck
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	classifier, err := bootstrap.Classifier(cfg.Intent)
	if err != nil {
		zapLog.Fatal("intent rules failed to load", zap.Error(err))
	}

	// --- Register Workers ---
	parseHandler, err := pbq.NewHandler(pbq.HandlerOptions{
		AppConfig:  cfg,
		Classifier: classifier,
		Parser:     timeparse.New(),
		Logger:     log,
		Metrics:    services.Metrics,
	})
	if err != nil {
		zapLog.Fatal("failed to create parse-business-query handler", zap.Error(err))
	}

	collectHandler, err := cbd.NewHandler(cbd.HandlerOptions{
		AppConfig: cfg,
		Collector: services.Orchestrator,
		Logger:    log,
		Metrics:   services.Metrics,
	})
	if err != nil {
		zapLog.Fatal("failed to create collect-business-data handler", zap.Error(err))
	}

	var workers []*camunda.Worker
	if parseHandler.IsEnabled() {
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), parseHandler, camunda.WorkerOptions{
			MaxJobsActive: parseHandler.GetConfig().MaxJobsActive,
			Timeout:       parseHandler.GetConfig().Timeout,
		}, log))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", pbq.TaskType))
	}
	if collectHandler.IsEnabled() {
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), collectHandler, camunda.WorkerOptions{
			MaxJobsActive: collectHandler.GetConfig().MaxJobsActive,
			Timeout:       collectHandler.GetConfig().Timeout,
		}, log))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", cbd.TaskType))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := httpapi.New(services.Dispatcher, services.Assistant, log, httpapi.Options{
		RequestTimeout: config.GetDuration(cfg.Server.RPCTimeout),
		Gatherer:       services.Gatherer,
		Checks:         services.Checks,
	})
	go func() {
		if err := server.Run(ctx, cfg.Server.HTTPAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	zapLog.Info("Worker manager stopped gracefully")
}
