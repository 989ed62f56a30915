package main

import (
	"context"
	"fmt"
	"os"

	app_service "contract-gas-exporter/internal/application/service"
	domain_service "contract-gas-exporter/internal/domain/service"
	"contract-gas-exporter/internal/infrastructure/blockchain"
	"contract-gas-exporter/internal/infrastructure/config"
	"contract-gas-exporter/internal/infrastructure/explorer"
	"contract-gas-exporter/internal/infrastructure/export"
	"contract-gas-exporter/internal/infrastructure/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.Etherscan),
		fx.Supply(&cfg.Export),

		// Infrastructure providers
		fx.Provide(
			explorer.NewEtherscanClient,
			blockchain.NewAbiResolver,
			export.NewCSVExporter,
		),

		// Domain services
		fx.Provide(
			domain_service.NewAddressValidator,
			domain_service.NewTransactionReconciler,
			domain_service.NewGasFeatureDeriver,
		),

		// Application providers
		fx.Provide(
			app_service.NewExportPipeline,
		),

		// One-shot pipeline run
		fx.Invoke(runPipeline),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Run blocks until the pipeline requests shutdown.
	app.Run()
}

// runPipeline runs the export pipeline once on startup and shuts the
// application down when it finishes.
func runPipeline(
	lifecycle fx.Lifecycle,
	shutdowner fx.Shutdowner,
	pipeline domain_service.ExportPipeline,
	log *logger.Logger,
	cfg *config.Config,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting export pipeline",
				zap.String("address", cfg.Query.Address),
				zap.String("network", cfg.Query.Network),
				zap.Bool("trace", cfg.Query.Trace))

			go func() {
				files, err := pipeline.Run(context.Background())
				if err != nil {
					log.Error("Export pipeline failed", zap.Error(err))
					shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				log.Info("Export pipeline finished",
					zap.Strings("files", files))
				shutdowner.Shutdown()
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Export pipeline stopped")
			return nil
		},
	})
}
