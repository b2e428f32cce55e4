package books

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/models"
)

// record maps the mutable columns of b. Price and Date are passed as their
// driver values so both dialects bind plain strings (or NULL).
func record(b models.Book) (goqu.Record, error) {
	price, err := b.Price.Value()
	if err != nil {
		return nil, err
	}
	published, err := b.PublicationDate.Value()
	if err != nil {
		return nil, err
	}
	return goqu.Record{
		"title":            b.Title,
		"author":           b.Author,
		"publisher":        b.Publisher,
		"publication_date": published,
		"category":         b.Category,
		"stock":            b.Stock,
		"price":            price,
		"language":         b.Language,
		"description":      b.Description,
		"available":        b.Available,
	}, nil
}

// requireAffected turns a write that matched no row into inventory.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}
