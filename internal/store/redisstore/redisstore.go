// Package redisstore keeps inventory records in Redis. Each record is a JSON
// string under <prefix>:book:<id>; <prefix>:ids is a sorted set of live ids
// scored by id and <prefix>:seq hands out new ids.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/models"
)

const DefaultPrefix = "inventory"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ inventory.Store = (*Store)(nil)

func New(rdb redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) seqKey() string { return s.prefix + ":seq" }
func (s *Store) idsKey() string { return s.prefix + ":ids" }
func (s *Store) bookKey(id int64) string {
	return s.prefix + ":book:" + strconv.FormatInt(id, 10)
}

func (s *Store) FindByID(ctx context.Context, id int64) (models.Book, bool, error) {
	raw, err := s.rdb.Get(ctx, s.bookKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Book{}, false, nil
	}
	if err != nil {
		return models.Book{}, false, err
	}
	b, err := decode(raw)
	if err != nil {
		return models.Book{}, false, err
	}
	return b, true, nil
}

func (s *Store) FindAll(ctx context.Context) ([]models.Book, error) {
	ids, err := s.rdb.ZRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	books := make([]models.Book, 0, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + ":book:" + id
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}
		b, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

func (s *Store) Save(ctx context.Context, b models.Book) (models.Book, error) {
	if b.ID == 0 {
		id, err := s.rdb.Incr(ctx, s.seqKey()).Result()
		if err != nil {
			return models.Book{}, fmt.Errorf("next id: %w", err)
		}
		b.ID = id
		raw, err := json.Marshal(b)
		if err != nil {
			return models.Book{}, err
		}
		pipe := s.rdb.TxPipeline()
		pipe.Set(ctx, s.bookKey(id), raw, 0)
		pipe.ZAdd(ctx, s.idsKey(), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		if _, err := pipe.Exec(ctx); err != nil {
			return models.Book{}, err
		}
		return b, nil
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return models.Book{}, err
	}
	// XX: only overwrite a record that still exists
	ok, err := s.rdb.SetXX(ctx, s.bookKey(b.ID), raw, 0).Result()
	if err != nil {
		return models.Book{}, err
	}
	if !ok {
		return models.Book{}, inventory.ErrNotFound
	}
	return b, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	pipe := s.rdb.TxPipeline()
	del := pipe.Del(ctx, s.bookKey(id))
	pipe.ZRem(ctx, s.idsKey(), strconv.FormatInt(id, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

func decode(raw []byte) (models.Book, error) {
	var b models.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return models.Book{}, fmt.Errorf("decode book: %w", err)
	}
	return b, nil
}
