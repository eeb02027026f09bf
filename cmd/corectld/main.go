// corectld is the dating/social-matching backend server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/afrodite-backend/corectl/internal/appstate"
	"github.com/afrodite-backend/corectl/internal/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config", getEnv("CORECTLD_CONFIG", "./config.toml"), "Path to the TOML configuration file")
	databaseDir := flag.String("database-dir", getEnv("CORECTLD_DATABASE_DIR", "./data"), "Directory holding current.db and history.db")
	sqliteInRAM := flag.Bool("sqlite-in-ram", false, "Run the durable store in RAM (debug only, never durable)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded, continuing with existing environment", "error", err)
	}

	cfg, err := config.Load(*configPath, config.CLIOverrides{
		DatabaseDir: *databaseDir,
		SQLiteInRAM: *sqliteInRAM,
	})
	if err != nil {
		logger.Error("load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting corectld",
		"config", *configPath,
		"database_dir", *databaseDir,
		"sqlite_in_ram", *sqliteInRAM,
		"listen_addr", cfg.Socket.ListenAddr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := appstate.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("wire application state", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := state.Close(); err != nil {
			logger.Error("close durable store", "error", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Socket.ListenAddr)
	if err := state.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
