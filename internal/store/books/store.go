// Package books is the SQL inventory store. Queries are built with goqu for
// either the postgres or the sqlite3 dialect and scanned with sqlx.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/models"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	Table = "books"
)

var columns = []any{
	"id", "title", "author", "publisher", "publication_date", "category",
	"stock", "price", "language", "description", "available",
}

type Store struct {
	db      *sqlx.DB
	dialect string
	builder goqu.DialectWrapper
}

var _ inventory.Store = (*Store)(nil)

func New(db *sqlx.DB, dialect string) (*Store, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("books store: unsupported dialect %q", dialect)
	}
	return &Store{db: db, dialect: dialect, builder: goqu.Dialect(dialect)}, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (models.Book, bool, error) {
	query, args, err := s.builder.From(Table).
		Select(columns...).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return models.Book{}, false, fmt.Errorf("build select: %w", err)
	}

	var b models.Book
	if err := s.db.GetContext(ctx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Book{}, false, nil
		}
		return models.Book{}, false, err
	}
	return b, true, nil
}

func (s *Store) FindAll(ctx context.Context) ([]models.Book, error) {
	query, args, err := s.builder.From(Table).
		Select(columns...).
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	books := []models.Book{}
	if err := s.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *Store) Save(ctx context.Context, b models.Book) (models.Book, error) {
	rec, err := record(b)
	if err != nil {
		return models.Book{}, err
	}
	if b.ID == 0 {
		id, err := s.insert(ctx, rec)
		if err != nil {
			return models.Book{}, err
		}
		b.ID = id
		return b, nil
	}

	query, args, err := s.builder.Update(Table).
		Set(rec).
		Where(goqu.C("id").Eq(b.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Book{}, err
	}
	if err := requireAffected(res); err != nil {
		return models.Book{}, err
	}
	return b, nil
}

func (s *Store) insert(ctx context.Context, rec goqu.Record) (int64, error) {
	ds := s.builder.Insert(Table).Rows(rec).Prepared(true)

	if s.dialect == DialectPostgres {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		var id int64
		if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := s.builder.Delete(Table).
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
