package books

import (
	"context"

	"github.com/5w1tchy/inventory-api/internal/models"
)

// Service is what the handlers need from the inventory service.
type Service interface {
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id int64) (models.Book, error)
	Create(ctx context.Context, b models.Book) (models.Book, error)
	Update(ctx context.Context, id int64, b models.Book) (models.Book, error)
	PatchStock(ctx context.Context, id int64, stock int64) (models.Book, error)
	Delete(ctx context.Context, id int64) (models.Book, error)
}

// bookReq is the body of POST /books and PUT /books/{id}. A client-sent id
// is accepted and ignored.
type bookReq struct {
	ID              *int64        `json:"id,omitempty"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	Publisher       string        `json:"publisher"`
	PublicationDate models.Date   `json:"publicationDate"`
	Category        string        `json:"category"`
	Stock           *int64        `json:"stock"`
	Price           *models.Price `json:"price"`
	Language        string        `json:"language"`
	Description     string        `json:"description"`
	Available       *bool         `json:"available"`
}

// stockReq is the body of PATCH /books/{id}/stock. Other keys are ignored.
type stockReq struct {
	Stock models.Optional[int64] `json:"stock"`
}

type link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

type bookLinks struct {
	Self   link `json:"self"`
	Update link `json:"update"`
	Stock  link `json:"stock"`
	Delete link `json:"delete"`
	All    link `json:"all"`
}

// bookResp is a record plus its hypermedia links.
type bookResp struct {
	models.Book
	Links bookLinks `json:"_links"`
}
