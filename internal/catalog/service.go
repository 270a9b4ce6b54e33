// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, p BookParams) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	SetBookStatus(ctx context.Context, id uuid.UUID, status BookStatus) (*Book, error)
	SetBookCondition(ctx context.Context, id uuid.UUID, condition BookCondition) (*Book, error)
	RelocateBook(ctx context.Context, id uuid.UUID, loc *LibraryLocation) (*Book, error)
	RecordCheckout(ctx context.Context, id uuid.UUID) (*Book, error)
	RateBook(ctx context.Context, id uuid.UUID, userID string, stars int) (*Book, error)
	RebuildBook(ctx context.Context, id uuid.UUID) (*Book, error)
}

// Repository is the read model the service keeps in step with the event log.
type Repository interface {
	Insert(ctx context.Context, b *Book) error
	// Get returns ErrBookNotFound when no book has the given id.
	Get(ctx context.Context, id uuid.UUID) (*Book, error)
	// Version returns the stored version of a book without decoding it, so a
	// row whose document no longer decodes can still be replaced.
	Version(ctx context.Context, id uuid.UUID) (int, error)
	// Update replaces the stored book if its stored version is
	// expectedVersion.
	Update(ctx context.Context, b *Book, expectedVersion int) error
}
