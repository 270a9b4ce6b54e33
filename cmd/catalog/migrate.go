package main

import (
	"context"

	"libracatalog/internal/config"
	"libracatalog/internal/store"
	"libracatalog/pkg/eventstore"
	"libracatalog/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCommand creates the event log and read model tables.
func migrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Creates the event store and read model schemas",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			db, closeDB := openDB(ctx, cfg)
			defer closeDB()

			if err := eventstore.NewEventStore(db).EnsureSchema(ctx); err != nil {
				logger.Fatal(ctx, "could not create event store schema", zap.Error(err))
			}
			if err := store.NewBookRepository(db).EnsureSchema(ctx); err != nil {
				logger.Fatal(ctx, "could not create read model schema", zap.Error(err))
			}
			logger.Info(ctx, "schemas are up to date")
		},
	}
}
