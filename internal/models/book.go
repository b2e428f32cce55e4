package models

// Book is the single inventory record. ID is zero until a store assigns it.
type Book struct {
	ID              int64  `json:"id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	Publisher       string `json:"publisher" db:"publisher"`
	PublicationDate Date   `json:"publicationDate" db:"publication_date"`
	Category        string `json:"category" db:"category"`
	Stock           int64  `json:"stock" db:"stock"`
	Price           Price  `json:"price" db:"price"`
	Language        string `json:"language" db:"language"`
	Description     string `json:"description" db:"description"`
	Available       bool   `json:"available" db:"available"`
}

// WithContentOf returns b with every mutable field taken from src.
// The id of b is kept.
func (b Book) WithContentOf(src Book) Book {
	src.ID = b.ID
	return src
}
