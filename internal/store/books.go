// internal/store/books.go
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"libracatalog/internal/catalog"
	"libracatalog/pkg/eventstore"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const booksSchema = `
	CREATE TABLE IF NOT EXISTS books (
		id UUID PRIMARY KEY,
		isbn TEXT NOT NULL,
		title TEXT NOT NULL,
		format TEXT NOT NULL,
		status TEXT NOT NULL,
		condition TEXT NOT NULL,
		genres TEXT[] NOT NULL DEFAULT '{}',
		location JSONB,
		series JSONB,
		document JSONB NOT NULL,
		version INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS books_genres_idx ON books USING GIN (genres);
`

const (
	dialectPostgres = "postgres"
	tableBooks      = "books"
	colID           = "id"
	colVersion      = "version"
	colDocument     = "document"
)

// BookRepository is the Postgres read model of the catalog. The full book
// is kept as a JSON document; the other columns exist for querying.
type BookRepository struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

var _ catalog.Repository = (*BookRepository)(nil)

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{
		db:     sqlx.NewDb(db, "postgres"),
		tracer: otel.Tracer("libracatalog/store"),
	}
}

func (r *BookRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, booksSchema); err != nil {
		return fmt.Errorf("create books schema: %w", err)
	}
	return nil
}

func (r *BookRepository) Insert(ctx context.Context, b *catalog.Book) error {
	ctx, span := r.tracer.Start(ctx, "store.books.insert",
		trace.WithAttributes(attribute.String("book.id", b.ID.String())))
	defer span.End()

	row, err := bookRecord(b)
	if err != nil {
		return err
	}
	row[colID] = b.ID

	query, args, err := goqu.Dialect(dialectPostgres).
		Insert(tableBooks).
		Rows(row).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

type storedBook struct {
	Document []byte `db:"document"`
	Version  int    `db:"version"`
}

func (r *BookRepository) Get(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	ctx, span := r.tracer.Start(ctx, "store.books.get",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	query, args, err := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(colDocument, colVersion).
		Where(goqu.Ex{colID: id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	var row storedBook
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("get book from read model: %w", err)
	}

	var b catalog.Book
	if err := json.Unmarshal(row.Document, &b); err != nil {
		return nil, fmt.Errorf("decode stored book %s: %w", id, err)
	}
	b.Version = row.Version
	return &b, nil
}

// Version returns the stored version of a book without decoding its
// document.
func (r *BookRepository) Version(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, span := r.tracer.Start(ctx, "store.books.version",
		trace.WithAttributes(attribute.String("book.id", id.String())))
	defer span.End()

	query, args, err := goqu.Dialect(dialectPostgres).
		From(tableBooks).
		Select(colVersion).
		Where(goqu.Ex{colID: id}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build version query: %w", err)
	}

	var version int
	if err := r.db.GetContext(ctx, &version, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, id)
		}
		return 0, fmt.Errorf("get book version from read model: %w", err)
	}
	return version, nil
}

func (r *BookRepository) Update(ctx context.Context, b *catalog.Book, expectedVersion int) error {
	ctx, span := r.tracer.Start(ctx, "store.books.update",
		trace.WithAttributes(
			attribute.String("book.id", b.ID.String()),
			attribute.Int("expected.version", expectedVersion),
		))
	defer span.End()

	query, args, err := buildUpdateQuery(b, expectedVersion)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, b.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: book %s is not at version %d", eventstore.ErrConcurrencyConflict, b.ID, expectedVersion)
	}
	return nil
}

func buildUpdateQuery(b *catalog.Book, expectedVersion int) (string, []any, error) {
	row, err := bookRecord(b)
	if err != nil {
		return "", nil, err
	}
	row["updated_at"] = goqu.L("NOW()")

	query, args, err := goqu.Dialect(dialectPostgres).
		Update(tableBooks).
		Set(row).
		Where(goqu.Ex{colID: b.ID, colVersion: expectedVersion}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("build update query: %w", err)
	}
	return query, args, nil
}

// bookRecord maps b onto every books column except id and the timestamps.
func bookRecord(b *catalog.Book) (goqu.Record, error) {
	doc, location, series, err := encodeBook(b)
	if err != nil {
		return nil, err
	}
	return goqu.Record{
		"isbn":      b.ISBN,
		"title":     b.Title,
		"format":    string(b.Format()),
		"status":    string(b.Status()),
		"condition": string(b.Condition()),
		"genres":    genreLabels(b.Genres),
		"location":  location,
		"series":    series,
		colDocument: doc,
		colVersion:  b.Version,
	}, nil
}

func genreLabels(genres []catalog.Category) pq.StringArray {
	labels := make(pq.StringArray, 0, len(genres))
	for _, g := range genres {
		labels = append(labels, g.String())
	}
	return labels
}

func encodeBook(b *catalog.Book) (doc []byte, location, series driver.Value, err error) {
	if doc, err = json.Marshal(b); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal book: %w", err)
	}
	if location, err = valueOrNull(b.Location()); err != nil {
		return nil, nil, nil, fmt.Errorf("encode location: %w", err)
	}
	if series, err = valueOrNull(b.Series()); err != nil {
		return nil, nil, nil, fmt.Errorf("encode series: %w", err)
	}
	return doc, location, series, nil
}

func valueOrNull[T driver.Valuer](v *T) (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return (*v).Value()
}
