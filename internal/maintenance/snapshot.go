// Package maintenance runs the scheduled catalog snapshot job.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/5w1tchy/inventory-api/internal/models"
	"github.com/5w1tchy/inventory-api/internal/storage/s3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Catalog interface {
	List(ctx context.Context) ([]models.Book, error)
}

type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	List(ctx context.Context, prefix string) ([]s3.Object, error)
	Delete(ctx context.Context, key string) error
}

type document struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Count       int           `json:"count"`
	Books       []models.Book `json:"books"`
}

type Snapshotter struct {
	catalog Catalog
	store   ObjectStore
	prefix  string
	keep    int
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewSnapshotter exports catalog to store under prefix and keeps the newest
// keep objects. keep <= 0 disables pruning.
func NewSnapshotter(catalog Catalog, store ObjectStore, prefix string, keep int, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshotter{
		catalog: catalog,
		store:   store,
		prefix:  prefix,
		keep:    keep,
		log:     logger.With(slog.String("job", "snapshot")),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// RunOnce uploads one snapshot and prunes old ones. It returns the new object key.
func (s *Snapshotter) RunOnce(ctx context.Context) (string, error) {
	books, err := s.catalog.List(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: list books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}

	at := s.now().UTC()
	body, err := json.Marshal(document{GeneratedAt: at, Count: len(books), Books: books})
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}

	key := s.prefix + at.Format("20060102T150405Z") + "-" + s.newID() + ".json"
	if err := s.store.Put(ctx, key, "application/json", body); err != nil {
		return "", fmt.Errorf("snapshot: upload: %w", err)
	}
	s.log.Info("snapshot uploaded", slog.String("key", key), slog.Int("count", len(books)))

	if _, err := s.prune(ctx); err != nil {
		return key, err
	}
	return key, nil
}

// prune deletes everything but the newest s.keep objects. Keys sort by
// their timestamp prefix.
func (s *Snapshotter) prune(ctx context.Context) (int, error) {
	if s.keep <= 0 {
		return 0, nil
	}
	objs, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("snapshot: list objects: %w", err)
	}
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		if strings.HasSuffix(o.Key, ".json") {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) <= s.keep {
		return 0, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	deleted := 0
	for _, k := range keys[s.keep:] {
		if err := s.store.Delete(ctx, k); err != nil {
			return deleted, fmt.Errorf("snapshot: prune: %w", err)
		}
		deleted++
	}
	s.log.Info("snapshots pruned", slog.Int("deleted", deleted), slog.Int("kept", s.keep))
	return deleted, nil
}

// nextRun is the first hour:minute in loc strictly after now.
func nextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// StartSnapshots runs s daily at hour:minute in loc until ctx is done.
// Call once at startup; failures are logged and retried on the next day.
func StartSnapshots(ctx context.Context, s *Snapshotter, hour, minute int, loc *time.Location) {
	go func() {
		for {
			next := nextRun(s.now(), hour, minute, loc)
			s.log.Debug("next snapshot scheduled", slog.Time("at", next))
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if _, err := s.RunOnce(ctx); err != nil {
					s.log.Error("snapshot failed", slog.Any("error", err))
				}
			}
		}
	}()
}
