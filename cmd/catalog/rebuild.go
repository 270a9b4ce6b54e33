package main

import (
	"context"

	"libracatalog/internal/catalog"
	"libracatalog/internal/config"
	"libracatalog/internal/store"
	"libracatalog/pkg/eventstore"
	"libracatalog/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rebuildCommand replays the event streams of the given books into the
// read model.
func rebuildCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild BOOK_ID...",
		Short: "Rebuilds read model rows from the event log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			ctx := context.Background()
			db, closeDB := openDB(ctx, cfg)
			defer closeDB()

			svc := catalog.NewService(eventstore.NewEventStore(db), store.NewBookRepository(db))
			for _, id := range ids {
				book, err := svc.RebuildBook(ctx, id)
				if err != nil {
					logger.Error(ctx, "could not rebuild book", zap.String("book.id", id.String()), zap.Error(err))
					return err
				}
				cmd.Printf("%s %q v%d %s\n", book.ID, book.Title, book.Version, book.Status())
			}
			return nil
		},
	}
}
