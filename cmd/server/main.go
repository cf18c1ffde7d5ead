package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xmasshowdown/showdown-server-go/internal/config"
	"github.com/xmasshowdown/showdown-server-go/internal/game"
	"github.com/xmasshowdown/showdown-server-go/internal/repository"
	"github.com/xmasshowdown/showdown-server-go/internal/room"
	"github.com/xmasshowdown/showdown-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting showdown server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize the optional results database
	var results *repository.GameResultRepository
	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		results = repository.NewGameResultRepository(db, logger)
		if err := results.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare database schema", zap.Error(err))
		}
		logger.Info("result persistence enabled")
	} else {
		logger.Info("result persistence disabled, running in memory only")
	}

	// Initialize room manager
	roomMgr := room.NewManager(logger)
	logger.Info("room manager initialized")

	// Initialize game manager
	gameMgr := game.NewManager(game.Config{
		InitialHand:      cfg.Game.InitialHand,
		HandLimit:        cfg.Game.HandLimit,
		LandLimit:        cfg.Game.LandLimit,
		DeckSizePerColor: cfg.Game.DeckSizePerColor,
		GiftsInDisplay:   cfg.Game.GiftsInDisplay,
		GiftPoolSize:     cfg.Game.GiftPoolSize,
	}, logger)
	logger.Info("game manager initialized")

	srv := server.New(cfg, roomMgr, gameMgr, results, logger)

	go func() {
		if serveErr := srv.ListenAndServe(); serveErr != nil {
			logger.Error("websocket server error", zap.Error(serveErr))
		}
	}()

	logger.Info("showdown server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	// Wait for termination signal
	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("showdown server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
