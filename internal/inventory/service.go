// Package inventory holds the book record lifecycle: validation of the
// business-required fields and the update semantics on top of a Store.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/5w1tchy/inventory-api/internal/models"
)

// Store is the persistence boundary. Save assigns a fresh id when b.ID is
// zero and overwrites the stored record otherwise. Implementations must
// never reuse an id.
type Store interface {
	FindByID(ctx context.Context, id int64) (models.Book, bool, error)
	FindAll(ctx context.Context) ([]models.Book, error)
	Save(ctx context.Context, b models.Book) (models.Book, error)
	DeleteByID(ctx context.Context, id int64) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]models.Book, error) {
	books, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, s.storeErr("list", 0, err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.Book, error) {
	b, ok, err := s.store.FindByID(ctx, id)
	if err != nil {
		return models.Book{}, s.storeErr("get", id, err)
	}
	if !ok {
		return models.Book{}, notFound(id)
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, b models.Book) (models.Book, error) {
	if err := checkInvariants(b); err != nil {
		return models.Book{}, err
	}
	b.ID = 0
	saved, err := s.store.Save(ctx, b)
	if err != nil {
		return models.Book{}, s.storeErr("create", 0, err)
	}
	s.logger.DebugContext(ctx, "book created", slog.Int64("book_id", saved.ID))
	return saved, nil
}

// Update replaces every mutable field of the stored record with those of
// payload. The stored id is kept whatever payload.ID holds. The lookup
// comes first, so an unknown id is NotFound even for an invalid payload.
func (s *Service) Update(ctx context.Context, id int64, payload models.Book) (models.Book, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if err := checkInvariants(payload); err != nil {
		return models.Book{}, err
	}
	return s.save(ctx, "update", existing.WithContentOf(payload))
}

// PatchStock overwrites only the stock of the stored record.
// An unknown id is NotFound whatever the stock value.
func (s *Service) PatchStock(ctx context.Context, id int64, stock int64) (models.Book, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if stock < 0 {
		return models.Book{}, invalid("stock", "must not be negative")
	}
	existing.Stock = stock
	return s.save(ctx, "patch_stock", existing)
}

// Delete removes the record and returns it as it was before removal.
func (s *Service) Delete(ctx context.Context, id int64) (models.Book, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Book{}, notFound(id)
		}
		return models.Book{}, s.storeErr("delete", id, err)
	}
	return existing, nil
}

func (s *Service) save(ctx context.Context, op string, b models.Book) (models.Book, error) {
	saved, err := s.store.Save(ctx, b)
	if err != nil {
		// the record can vanish between lookup and write
		if errors.Is(err, ErrNotFound) {
			return models.Book{}, notFound(b.ID)
		}
		return models.Book{}, s.storeErr(op, b.ID, err)
	}
	return saved, nil
}

func (s *Service) storeErr(op string, id int64, err error) error {
	s.logger.Error("inventory store failed",
		slog.String("op", op),
		slog.Int64("book_id", id),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("inventory %s: %w", op, err)
}

// checkInvariants guards what must hold for every persisted record,
// independent of the boundary's field validation.
func checkInvariants(b models.Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return invalid("title", "must not be blank")
	}
	if strings.TrimSpace(b.Author) == "" {
		return invalid("author", "must not be blank")
	}
	if b.Stock < 0 {
		return invalid("stock", "must not be negative")
	}
	return nil
}
