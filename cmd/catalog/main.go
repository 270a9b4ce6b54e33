// Package main is the catalog service binary. It wires subcommands (serve,
// migrate, rebuild), loads configuration and initializes logging.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"libracatalog/internal/config"
	"libracatalog/pkg/logger"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// openDB opens the Postgres pool and returns it with a cleanup function.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, func()) {
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal(ctx, "could not open postgres", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal(ctx, "could not reach postgres", zap.Error(err))
	}

	return db, func() {
		logger.Info(ctx, "closing postgres pool...")
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres pool", zap.Error(err))
		}
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use: "catalog",
	}

	// cobra parses flags only at Execute; the config path is needed before that.
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config File Path")

	configPath := flag.String("c", "", "The config file path")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath == "" {
		cfg, err = config.LoadEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		log.Fatal("could not load config: ", err)
	}

	if err := logger.Setup(cfg.Environment); err != nil {
		log.Fatal("could not set up logger: ", err)
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		serveCommand(cfg),
		migrateCommand(cfg),
		rebuildCommand(cfg),
	)

	err = rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
