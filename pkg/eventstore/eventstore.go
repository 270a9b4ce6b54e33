package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is one entry in an aggregate's stream.
type Event struct {
	ID            int64               `json:"id"`
	AggregateID   uuid.UUID           `json:"aggregate_id"`
	AggregateType string              `json:"aggregate_type"`
	EventType     string              `json:"event_type"`
	EventData     jsoniter.RawMessage `json:"event_data"`
	Metadata      map[string]string   `json:"metadata,omitempty"`
	Version       int                 `json:"version"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewEvent encodes payload as the data of an event of the given type.
func NewEvent(eventType string, payload any) (Event, error) {
	data, err := codec.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{EventType: eventType, EventData: data}, nil
}

// Decode unmarshals the event data into v.
func (e Event) Decode(v any) error {
	if err := codec.Unmarshal(e.EventData, v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", e.EventType, err)
	}
	return nil
}

// Store is the contract shared by the Postgres and in-memory stores.
type Store interface {
	AppendEvents(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error
	LoadEvents(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error)
	GetCurrentVersion(ctx context.Context, aggregateID uuid.UUID) (int, error)
}

const schema = `
	CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		aggregate_id UUID NOT NULL,
		aggregate_type TEXT NOT NULL,
		event_type TEXT NOT NULL,
		event_data JSONB NOT NULL,
		metadata JSONB,
		version INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (aggregate_id, version)
	);
`

// EventStore is an append-only Postgres event log with optimistic
// concurrency per aggregate.
type EventStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{
		db:     db,
		tracer: otel.Tracer("libracatalog/eventstore"),
	}
}

// EnsureSchema creates the events table if it does not exist yet.
func (es *EventStore) EnsureSchema(ctx context.Context) error {
	if _, err := es.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create events schema: %w", err)
	}
	return nil
}

// AppendEvents atomically appends events after expectedVersion. It fails with
// ErrConcurrencyConflict if another writer got there first.
func (es *EventStore) AppendEvents(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error {
	ctx, span := es.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}

	tx, err := es.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM events
		WHERE aggregate_id = $1
	`, aggregateID).Scan(&currentVersion)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query current version: %w", err)
	}

	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (aggregate_id, aggregate_type, event_type, event_data, metadata, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, event := range events {
		version := expectedVersion + i + 1
		metadata, err := codec.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata of event %d: %w", i, err)
		}

		var eventID int64
		err = stmt.QueryRowContext(ctx,
			aggregateID,
			aggregateType,
			event.EventType,
			[]byte(event.EventData),
			metadata,
			version,
			time.Now().UTC(),
		).Scan(&eventID)
		if err != nil {
			if isConflict(err) {
				return ErrConcurrencyConflict
			}
			return fmt.Errorf("insert event %d: %w", i, err)
		}

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", eventID),
			attribute.Int("event.version", version),
			attribute.String("event.type", event.EventType),
		))
	}

	if err := tx.Commit(); err != nil {
		if isConflict(err) {
			return ErrConcurrencyConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// LoadEvents returns an aggregate's events from fromVersion on, up to
// toVersion when it is positive.
func (es *EventStore) LoadEvents(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, event_data, metadata, version, created_at
		FROM events
		WHERE aggregate_id = $1
		AND version >= $2
	`
	args := []any{aggregateID, fromVersion}
	if toVersion > 0 {
		query += " AND version <= $3"
		args = append(args, toVersion)
	}
	query += " ORDER BY version ASC"

	rows, err := es.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event    Event
			data     []byte
			metadata []byte
		)
		err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.AggregateType,
			&event.EventType,
			&data,
			&metadata,
			&event.Version,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.EventData = data
		if len(metadata) > 0 {
			if err := codec.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata of event %d: %w", event.ID, err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// GetCurrentVersion returns the latest version of an aggregate, 0 if it has
// no events.
func (es *EventStore) GetCurrentVersion(ctx context.Context, aggregateID uuid.UUID) (int, error) {
	ctx, span := es.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(attribute.String("aggregate.id", aggregateID.String())),
	)
	defer span.End()

	var version int
	err := es.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0)
		FROM events
		WHERE aggregate_id = $1
	`, aggregateID).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query version: %w", err)
	}

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

// isConflict reports a unique violation on (aggregate_id, version) or a
// serialization failure of the append transaction.
func isConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" || pqErr.Code == "40001"
}
