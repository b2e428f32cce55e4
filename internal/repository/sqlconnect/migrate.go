package sqlconnect

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/5w1tchy/inventory-api/internal/store/dbx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS books (
	id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	title            VARCHAR(150)  NOT NULL CHECK (btrim(title) <> ''),
	author           VARCHAR(120)  NOT NULL CHECK (btrim(author) <> ''),
	publisher        VARCHAR(120)  NOT NULL DEFAULT '',
	publication_date DATE,
	category         VARCHAR(60)   NOT NULL DEFAULT '',
	stock            BIGINT        NOT NULL CHECK (stock >= 0),
	price            NUMERIC(12,2) NOT NULL CHECK (price >= 0),
	language         VARCHAR(2)    NOT NULL DEFAULT '',
	description      VARCHAR(500)  NOT NULL DEFAULT '',
	available        BOOLEAN       NOT NULL DEFAULT TRUE
)`

// price is TEXT so the two fraction digits survive a round trip.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	title            TEXT    NOT NULL CHECK (trim(title) <> ''),
	author           TEXT    NOT NULL CHECK (trim(author) <> ''),
	publisher        TEXT    NOT NULL DEFAULT '',
	publication_date DATE,
	category         TEXT    NOT NULL DEFAULT '',
	stock            INTEGER NOT NULL CHECK (stock >= 0),
	price            TEXT    NOT NULL,
	language         TEXT    NOT NULL DEFAULT '',
	description      TEXT    NOT NULL DEFAULT '',
	available        BOOLEAN NOT NULL DEFAULT 1
)`

// Migrate creates the books table when it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	var ddl string
	switch driver {
	case DriverPostgres:
		ddl = postgresSchema
	case DriverSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("migrate: unsupported sql driver %q", driver)
	}
	return dbx.WithinTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("migrate books: %w", err)
		}
		return nil
	})
}
