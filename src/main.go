package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pressplay/src/features/config"
	"pressplay/src/features/history"
	"pressplay/src/features/hosting"
	"pressplay/src/features/importing"
	"pressplay/src/features/logging"
	"pressplay/src/features/orchestrator"
	"pressplay/src/features/player"
	"pressplay/src/features/store"
	"pressplay/src/infra/blockdev"
	"pressplay/src/infra/database"
	"pressplay/src/infra/gpio"
	"pressplay/src/infra/mpv"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := cfgManager.Get()

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Cancelled on SIGINT/SIGTERM; the supervisor restarts us on crash.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Media store
	storeService := store.NewService(cfg.MediaPath)
	if err := storeService.EnsureDir(); err != nil {
		log.Fatalf("failed to prepare media directory: %v", err)
	}

	// Removable media importer
	volumeManager := blockdev.NewManager(cfg.Import.DevicePattern, cfg.Import.MountPoint)
	importingService := importing.NewService(volumeManager, storeService, cfgManager)

	// Player session controller
	driver := mpv.New(cfg.Player.Binary, cfg.Player.Socket, cfg.Player.ExtraArgs)
	playerService := player.NewService(driver)

	// Hardware button
	buttonInput, err := gpio.NewButton(cfg.Button.Chip, cfg.Button.Pin, time.Duration(cfg.Button.DebounceMs)*time.Millisecond)
	if err != nil {
		log.Fatalf("failed to open button input: %v", err)
	}
	defer buttonInput.Close()

	// Playback ledger
	ledger, err := database.NewSqliteLedger(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open ledger database: %v", err)
	}
	defer ledger.Close()
	historyService := history.NewService(ledger)

	// Telegram notifications if enabled
	var notifier orchestrator.Notifier
	if cfg.Telegram.Enabled {
		telegramNotifier, err := hosting.NewTelegramNotifier(cfgManager)
		if err != nil {
			slog.Error("Failed to initialize Telegram notifier", "error", err)
		} else {
			notifier = telegramNotifier
		}
	}

	// Status server if enabled
	if cfg.Server.Enabled {
		server := hosting.NewServer(cfgManager, storeService, playerService, historyService)
		go func() {
			slog.Info("Status server listening", "port", cfg.Server.Port)
			if err := server.Start(); err != nil {
				slog.Error("Status server stopped", "error", err)
			}
		}()
		defer func() {
			if err := server.Shutdown(); err != nil {
				slog.Error("Failed to shut down status server", "error", err)
			}
		}()
	}

	// Run the orchestration loop until terminated
	orchestratorService := orchestrator.NewService(storeService, importingService, playerService, buttonInput, historyService, notifier)
	if err := orchestratorService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Orchestration loop exited", "error", err)
	}
	slog.Info("Shutting down")
}
