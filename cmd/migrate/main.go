package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/erp/pos-gateway/internal/infrastructure/config"
	"github.com/erp/pos-gateway/internal/infrastructure/logger"
	"github.com/erp/pos-gateway/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		log.Info("Running schema migration",
			zap.String("database", cfg.Database.DBName),
			zap.String("host", cfg.Database.Host),
		)
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Migration completed successfully")

	case "status":
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}
		stats, err := db.Stats()
		if err != nil {
			log.Fatal("Failed to read connection stats", zap.Error(err))
		}
		log.Info("Database reachable",
			zap.String("database", cfg.Database.DBName),
			zap.Int("open_connections", stats.OpenConnections),
		)

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`POS Gateway Schema Migration Tool

Usage:
  migrate [flags] <command>

Commands:
  up        Create or update the schema for all persistence models
  status    Check database connectivity and report pool stats

Flags:
  -log-level string   Log level: debug, info, warn, error (default: info)

Configuration is read the same way the server reads it: config.toml plus
POSGW_-prefixed environment variables.`)
}
