package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"libracatalog/internal/catalog"
	"libracatalog/pkg/eventstore"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to the Postgres described by the PG* variables and
// skips the test when none is reachable.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("PGHOST", "localhost"),
		envOr("PGPORT", "5432"),
		envOr("PGUSER", "user"),
		envOr("PGPASSWORD", "password"),
		envOr("PGDATABASE", "testdb"),
	)
	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("skipping store tests: could not connect to postgres: %v", err)
	}
	return db
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newHardcover(t *testing.T) *catalog.Book {
	t.Helper()
	loc, err := catalog.NewLibraryLocation("noir", 12)
	require.NoError(t, err)
	b, err := catalog.NewBook(catalog.BookParams{
		ID:      uuid.New(),
		Version: 1,
		Details: catalog.Details{
			Title:   "The Big Sleep",
			Authors: []string{"Raymond Chandler"},
			ISBN:    "9780394758282",
			Genres:  []catalog.Category{catalog.MustCategory("Noir")},
		},
		Format:    catalog.FormatHardcover,
		Status:    catalog.StatusAvailable,
		Condition: catalog.ConditionGood,
		Location:  &loc,
	})
	require.NoError(t, err)
	return b
}

func TestBookRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewBookRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	book := newHardcover(t)
	require.NoError(t, repo.Insert(ctx, book))

	got, err := repo.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.Location(), got.Location())
	assert.Equal(t, 1, got.Version)

	next := got.Clone()
	require.NoError(t, next.SetStatus(catalog.StatusInRepair))
	next.Version = 2
	require.NoError(t, repo.Update(ctx, next, 1))

	got, err = repo.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusInRepair, got.Status())
	assert.Equal(t, 2, got.Version)

	err = repo.Update(ctx, next, 1)
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func TestBookRepositoryGetMissing(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewBookRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	_, err = repo.Version(ctx, uuid.New())
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	err = repo.Update(ctx, newHardcover(t), 1)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestBookRepositoryVersionSkipsUndecodableDocument(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewBookRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	book := newHardcover(t)
	require.NoError(t, repo.Insert(ctx, book))
	_, err := db.ExecContext(ctx, `UPDATE books SET document = '{"format":"Scroll"}' WHERE id = $1`, book.ID)
	require.NoError(t, err)

	_, err = repo.Get(ctx, book.ID)
	require.Error(t, err)

	version, err := repo.Version(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	require.NoError(t, repo.Update(ctx, book, version))
	got, err := repo.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)
}

func TestEncodeBookNullsAbsentValues(t *testing.T) {
	b, err := catalog.NewBook(catalog.BookParams{
		ID:        uuid.New(),
		Details:   catalog.Details{Title: "Dune"},
		Format:    catalog.FormatEbook,
		Status:    catalog.StatusAvailable,
		Condition: catalog.ConditionNew,
	})
	require.NoError(t, err)

	doc, location, series, err := encodeBook(b)
	require.NoError(t, err)
	assert.Nil(t, location)
	assert.Nil(t, series)
	assert.Contains(t, string(doc), `"format":"E-book"`)

	shelved := newHardcover(t)
	_, location, _, err = encodeBook(shelved)
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Noir","shelf":12}`, string(location.([]byte)))
}

func TestBuildUpdateQueryGuardsVersion(t *testing.T) {
	query, args, err := buildUpdateQuery(newHardcover(t), 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query, `UPDATE "books" SET`), query)
	assert.Contains(t, query, `"updated_at"=NOW()`)
	assert.Contains(t, query, `"version" = $`)
	assert.Contains(t, query, `"id" = $`)
	assert.NotEmpty(t, args)
}
