package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/inventory-api/internal/config"
	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/repository/sqlconnect"
	"github.com/5w1tchy/inventory-api/internal/store/books"
	"github.com/5w1tchy/inventory-api/internal/store/memory"
	"github.com/5w1tchy/inventory-api/internal/store/redisstore"
)

// openStore picks the inventory.Store for cfg.StoreDriver. The returned
// close func is never nil.
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (inventory.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.New(), noop, nil

	case config.StoreRedis:
		if rdb == nil {
			return nil, noop, fmt.Errorf("store %q: redis is not configured", cfg.StoreDriver)
		}
		return redisstore.New(rdb, cfg.RedisKeyPrefix), noop, nil

	case config.StorePostgres, config.StoreSQLite:
		driver, dsn := sqlconnect.DriverPostgres, cfg.DatabaseURL
		if cfg.StoreDriver == config.StoreSQLite {
			var err error
			driver = sqlconnect.DriverSQLite
			if dsn, err = sqlconnect.SQLiteDSN(cfg.SQLitePath); err != nil {
				return nil, noop, err
			}
		}

		db, err := sqlconnect.Connect(ctx, driver, dsn)
		if err != nil {
			return nil, noop, err
		}
		closeDB := func() { _ = db.Close() }
		if err := sqlconnect.Migrate(ctx, db, driver); err != nil {
			closeDB()
			return nil, noop, err
		}
		dialect, err := sqlconnect.Dialect(driver)
		if err != nil {
			closeDB()
			return nil, noop, err
		}
		st, err := books.New(db, dialect)
		if err != nil {
			closeDB()
			return nil, noop, err
		}
		return st, closeDB, nil
	}
	return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
