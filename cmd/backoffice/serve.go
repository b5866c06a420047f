package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/backoffice/internal/backoffice/auth"
	"github.com/gartstein/backoffice/internal/backoffice/controller"
	"github.com/gartstein/backoffice/internal/backoffice/handlers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard and the gRPC health endpoint",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	ctx := cmd.Context()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	producer, err := newProducer()
	if err != nil {
		return err
	}
	defer producer.Close()

	audit := controller.NewAuditor(repo, producer, logger)
	services := handlers.Services{
		Orders:    controller.NewOrderService(repo, audit, logger),
		Warehouse: controller.NewWarehouseService(repo, audit, producer, logger),
		Personnel: controller.NewPersonnelService(repo, audit, logger),
		Logs:      controller.NewLogService(repo, audit, logger),
		Dashboard: controller.NewDashboardService(repo, logger),
		Users:     controller.NewUserService(repo, auth.NewHasher(0), audit, logger),
		Health:    repo,
	}

	sessions := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure, repo, logger)
	handler, err := handlers.NewHandler(services, sessions, handlers.Options{
		PageSize:         cfg.PageSize,
		LogPageSize:      cfg.LogPageSize,
		LogRetentionDays: cfg.LogRetentionDays,
		CookieSecure:     cfg.CookieSecure,
	}, logger)
	if err != nil {
		return err
	}

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, handlers.NewRouter(handler), logger)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()
	logger.Info("Back office started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
	)

	return waitForShutdown(server, errChan)
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, or a
// server fails, then shuts down servers.
func waitForShutdown(server *handlers.Server, errChan <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var err error
	select {
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err = <-errChan:
		logger.Error("Server failed", zap.Error(err))
	}

	server.Stop()
	logger.Info("Servers stopped properly")
	return err
}
