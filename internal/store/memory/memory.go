// Package memory is a process-local inventory store for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/models"
)

type Store struct {
	mu     sync.RWMutex
	books  map[int64]models.Book
	nextID int64
}

var _ inventory.Store = (*Store)(nil)

func New() *Store {
	return &Store{books: make(map[int64]models.Book), nextID: 1}
}

func (s *Store) FindByID(_ context.Context, id int64) (models.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	return b, ok, nil
}

func (s *Store) FindAll(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b models.Book) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *Store) Save(_ context.Context, b models.Book) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID
		s.nextID++
	} else if _, ok := s.books[b.ID]; !ok {
		return models.Book{}, inventory.ErrNotFound
	}
	s.books[b.ID] = b
	return b, nil
}

func (s *Store) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return inventory.ErrNotFound
	}
	delete(s.books, id)
	return nil
}

// Len is the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
