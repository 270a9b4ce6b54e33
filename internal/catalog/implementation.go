// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libracatalog/pkg/eventstore"
	"libracatalog/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// service implements the Service interface.
type service struct {
	eventStore eventstore.Store
	books      Repository
	tracer     trace.Tracer
	mutations  metric.Int64Counter
	now        func() time.Time
}

// NewService creates a new catalog service instance.
func NewService(es eventstore.Store, books Repository) Service {
	mutations, err := otel.Meter("libracatalog/catalog").Int64Counter(
		"catalog.book.mutations",
		metric.WithDescription("Book events appended to the event store"),
	)
	if err != nil {
		mutations = noop.Int64Counter{}
	}
	return &service{
		eventStore: es,
		books:      books,
		tracer:     otel.Tracer("libracatalog/catalog"),
		mutations:  mutations,
		now:        time.Now,
	}
}

// AddBook validates p and records a new book.
func (s *service) AddBook(ctx context.Context, p BookParams) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.add_book")
	defer span.End()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Version = 1
	if p.DateAdded.IsZero() {
		y, m, d := s.now().UTC().Date()
		p.DateAdded = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	book, err := NewBook(p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("book.id", book.ID.String()),
		attribute.String("book.format", string(book.Format())),
	)

	event, err := eventstore.NewEvent(EventBookAdded, BookAddedEvent{Book: book})
	if err != nil {
		return nil, err
	}
	if err := s.eventStore.AppendEvents(ctx, book.ID, AggregateType, 0, []eventstore.Event{event}); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to append event: %w", err)
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", EventBookAdded)))

	if err := s.books.Insert(ctx, book); err != nil {
		logger.Error(ctx, "read model insert failed, book needs a rebuild",
			zap.String("book.id", book.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	logger.Info(ctx, "book added",
		zap.String("book.id", book.ID.String()),
		zap.String("book.title", book.Title),
		zap.String("book.format", string(book.Format())),
	)
	return book, nil
}

// GetBook retrieves a book from the read model by its ID.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.get_book",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	book, err := s.books.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrBookNotFound) {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	return book, nil
}

func (s *service) SetBookStatus(ctx context.Context, id uuid.UUID, status BookStatus) (*Book, error) {
	return s.mutate(ctx, id, EventBookStatusChanged, func(b *Book) (*Book, any, error) {
		next := b.Clone()
		if err := next.SetStatus(status); err != nil {
			return nil, nil, err
		}
		return next, BookStatusChangedEvent{ID: b.ID, From: b.Status(), To: status}, nil
	})
}

func (s *service) SetBookCondition(ctx context.Context, id uuid.UUID, condition BookCondition) (*Book, error) {
	return s.mutate(ctx, id, EventBookConditionChanged, func(b *Book) (*Book, any, error) {
		next := b.Clone()
		if err := next.SetCondition(condition); err != nil {
			return nil, nil, err
		}
		return next, BookConditionChangedEvent{ID: b.ID, From: b.Condition(), To: condition}, nil
	})
}

// RelocateBook replaces the book's shelf location. A nil location takes the
// book off the shelf.
func (s *service) RelocateBook(ctx context.Context, id uuid.UUID, loc *LibraryLocation) (*Book, error) {
	return s.mutate(ctx, id, EventBookRelocated, func(b *Book) (*Book, any, error) {
		next, err := b.WithLocation(loc)
		if err != nil {
			return nil, nil, err
		}
		return next, BookRelocatedEvent{ID: b.ID, Location: next.Location()}, nil
	})
}

// RecordCheckout marks the copy as checked out and bumps its checkout count.
func (s *service) RecordCheckout(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.mutate(ctx, id, EventBookCheckedOut, func(b *Book) (*Book, any, error) {
		next, err := b.WithCheckoutRecorded()
		if err != nil {
			return nil, nil, err
		}
		return next, BookCheckedOutEvent{ID: b.ID, CheckoutCount: next.CheckoutCount()}, nil
	})
}

func (s *service) RateBook(ctx context.Context, id uuid.UUID, userID string, stars int) (*Book, error) {
	return s.mutate(ctx, id, EventBookRated, func(b *Book) (*Book, any, error) {
		next, err := b.WithRating(userID, stars)
		if err != nil {
			return nil, nil, err
		}
		return next, BookRatedEvent{ID: b.ID, UserID: userID, Stars: stars}, nil
	})
}

// RebuildBook replays the book's event stream and overwrites the read model
// with the result.
func (s *service) RebuildBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.rebuild_book",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	events, err := s.eventStore.LoadEvents(ctx, id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	book, err := ReplayBook(events)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stored, err := s.books.Version(ctx, id)
	switch {
	case errors.Is(err, ErrBookNotFound):
		err = s.books.Insert(ctx, book)
	case err == nil:
		err = s.books.Update(ctx, book, stored)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	logger.Info(ctx, "book rebuilt from events",
		zap.String("book.id", id.String()),
		zap.Int("book.version", book.Version),
		zap.Int("events", len(events)),
	)
	return book, nil
}

// mutate loads a book, applies change, appends the resulting event at the
// next version and updates the read model. Nothing is written if change
// fails.
func (s *service) mutate(
	ctx context.Context,
	id uuid.UUID,
	eventType string,
	change func(*Book) (*Book, any, error),
) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.mutate",
		trace.WithAttributes(
			attribute.String("book.id", id.String()),
			attribute.String("event.type", eventType),
		),
	)
	defer span.End()

	current, err := s.books.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, payload, err := change(current)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		logger.Debug(ctx, "book change rejected",
			zap.String("book.id", id.String()),
			zap.String("event.type", eventType),
			zap.Error(err),
		)
		return nil, err
	}
	next.Version = current.Version + 1

	event, err := eventstore.NewEvent(eventType, payload)
	if err != nil {
		return nil, err
	}
	if err := s.eventStore.AppendEvents(ctx, id, AggregateType, current.Version, []eventstore.Event{event}); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to append event: %w", err)
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("event.type", eventType)))

	if err := s.books.Update(ctx, next, current.Version); err != nil {
		logger.Error(ctx, "read model update failed, book needs a rebuild",
			zap.String("book.id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update read model: %w", err)
	}

	logger.Info(ctx, "book updated",
		zap.String("book.id", id.String()),
		zap.String("event.type", eventType),
		zap.String("book.status", string(next.Status())),
		zap.Int("book.version", next.Version),
	)
	return next, nil
}
