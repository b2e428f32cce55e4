package books_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/models"
	"github.com/5w1tchy/inventory-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/inventory-api/internal/store/books"
)

var cols = []string{
	"id", "title", "author", "publisher", "publication_date", "category",
	"stock", "price", "language", "description", "available",
}

func dune() models.Book {
	return models.Book{
		Title:           "Dune",
		Author:          "Frank Herbert",
		Publisher:       "Chilton",
		PublicationDate: models.NewDate(1965, time.August, 1),
		Category:        "Science Fiction",
		Stock:           5,
		Price:           models.MustPrice("10.00"),
		Language:        "EN",
		Description:     "Desert planet.",
		Available:       true,
	}
}

func assertSameBook(t *testing.T, want, got models.Book) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Author, got.Author)
	assert.Equal(t, want.Publisher, got.Publisher)
	assert.Equal(t, want.PublicationDate.String(), got.PublicationDate.String())
	assert.Equal(t, want.Category, got.Category)
	assert.Equal(t, want.Stock, got.Stock)
	assert.Equal(t, want.Price.StringFixed(2), got.Price.StringFixed(2))
	assert.Equal(t, want.Language, got.Language)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Available, got.Available)
}

func newSQLite(t *testing.T) *books.Store {
	t.Helper()
	ctx := context.Background()
	dsn, err := sqlconnect.SQLiteDSN(":memory:")
	require.NoError(t, err)
	db, err := sqlconnect.Connect(ctx, sqlconnect.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlconnect.Migrate(ctx, db, sqlconnect.DriverSQLite))

	st, err := books.New(db, books.DialectSQLite)
	require.NoError(t, err)
	return st
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	created, err := st.Save(ctx, dune())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, ok, err := st.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameBook(t, created, got)

	bare := models.Book{Title: "Emma", Author: "Jane Austen", Price: models.MustPrice("0"), Available: false}
	second, err := st.Save(ctx, bare)
	require.NoError(t, err)

	all, err := st.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, created.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.True(t, all[1].PublicationDate.IsZero())
	assert.Equal(t, "0.00", all[1].Price.StringFixed(2))
	assert.False(t, all[1].Available)
}

func TestSQLite_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newSQLite(t)

	created, err := st.Save(ctx, dune())
	require.NoError(t, err)

	changed := created
	changed.Stock = 20
	changed.Price = models.MustPrice("12.5")
	_, err = st.Save(ctx, changed)
	require.NoError(t, err)

	got, ok, err := st.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(20), got.Stock)
	assert.Equal(t, "12.50", got.Price.StringFixed(2))

	require.NoError(t, st.DeleteByID(ctx, created.ID))
	_, ok, err = st.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, st.DeleteByID(ctx, created.ID), inventory.ErrNotFound)
	_, err = st.Save(ctx, changed)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	next, err := st.Save(ctx, dune())
	require.NoError(t, err)
	assert.Greater(t, next.ID, created.ID)
}

func TestSQLite_RejectsNegativeStock(t *testing.T) {
	st := newSQLite(t)
	b := dune()
	b.Stock = -1
	_, err := st.Save(context.Background(), b)
	assert.Error(t, err)
}

func TestNew_UnknownDialect(t *testing.T) {
	_, err := books.New(nil, "mysql")
	assert.Error(t, err)
}

func newMock(t *testing.T) (*books.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	st, err := books.New(sqlx.NewDb(db, sqlconnect.DriverPostgres), books.DialectPostgres)
	require.NoError(t, err)
	return st, mock
}

func TestPostgres_FindByID(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "books" WHERE \("id" = \$1\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(1), "Dune", "Frank Herbert", "Chilton",
			time.Date(1965, time.August, 1, 0, 0, 0, 0, time.UTC),
			"Science Fiction", int64(5), "10.00", "EN", "Desert planet.", true,
		))

	got, ok, err := st.FindByID(t.Context(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	want := dune()
	want.ID = 1
	assertSameBook(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindByID_Missing(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "books" WHERE \("id" = \$1\)`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(cols))

	_, ok, err := st.FindByID(t.Context(), 9)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindAllOrdersByID(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "books" ORDER BY "id" ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "Dune", "Frank Herbert", "", nil, "", int64(5), "10.00", "", "", true).
			AddRow(int64(2), "Emma", "Jane Austen", "", nil, "", int64(0), "3.10", "", "", false))

	all, err := st.FindAll(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Emma", all[1].Title)
	assert.Equal(t, "3.10", all[1].Price.StringFixed(2))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertReturnsID(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO "books" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	got, err := st.Save(t.Context(), dune())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Dune", got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateMissingIsNotFound(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectExec(`UPDATE "books" SET .+ WHERE \("id" = \$\d+\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	b := dune()
	b.ID = 4
	_, err := st.Save(t.Context(), b)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete(t *testing.T) {
	st, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM "books" WHERE \("id" = \$1\)`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "books" WHERE \("id" = \$1\)`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, st.DeleteByID(t.Context(), 3))
	assert.ErrorIs(t, st.DeleteByID(t.Context(), 3), inventory.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PropagatesDriverErrors(t *testing.T) {
	st, mock := newMock(t)
	boom := errors.New("conn refused")

	mock.ExpectQuery(`SELECT .+ FROM "books"`).WillReturnError(boom)

	_, err := st.FindAll(t.Context())
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
