package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/inventory-api/internal/config"
	"github.com/5w1tchy/inventory-api/internal/models"
	"github.com/5w1tchy/inventory-api/internal/store/books"
	"github.com/5w1tchy/inventory-api/internal/store/memory"
	"github.com/5w1tchy/inventory-api/internal/store/redisstore"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		st, closeFn, err := openStore(ctx, config.Config{StoreDriver: config.StoreMemory}, nil)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &memory.Store{}, st)
	})

	t.Run("sqlite migrates", func(t *testing.T) {
		cfg := config.Config{StoreDriver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "inv.db")}
		st, closeFn, err := openStore(ctx, cfg, nil)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &books.Store{}, st)

		saved, err := st.Save(ctx, models.Book{Title: "Dune", Author: "Herbert", Stock: 1, Price: models.MustPrice("10.00"), Available: true})
		require.NoError(t, err)
		assert.EqualValues(t, 1, saved.ID)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		st, closeFn, err := openStore(ctx, config.Config{StoreDriver: config.StoreRedis, RedisKeyPrefix: "inv"}, rdb)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &redisstore.Store{}, st)
	})

	t.Run("redis without client", func(t *testing.T) {
		_, closeFn, err := openStore(ctx, config.Config{StoreDriver: config.StoreRedis}, nil)
		assert.Error(t, err)
		closeFn()
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, _, err := openStore(ctx, config.Config{StoreDriver: "mongo"}, nil)
		assert.ErrorContains(t, err, "mongo")
	})
}
