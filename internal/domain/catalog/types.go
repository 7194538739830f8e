package catalog

import (
	"errors"
	"time"

	"souq/internal/i18n"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubCategoryMismatch = errors.New("subcategory does not belong to category")
	ErrNoFields            = errors.New("no fields to update")
)

type Category struct {
	ID            int64         `json:"id"`
	Name          i18n.Text     `json:"name"`
	Description   i18n.Text     `json:"description"`
	ImageURL      string        `json:"image_url"`
	SubCategories []SubCategory `json:"subcategories"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type SubCategory struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Name        i18n.Text `json:"name"`
	Description i18n.Text `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRef is the slice of a category joined onto product reads.
type CategoryRef struct {
	ID          int64     `json:"id"`
	Name        i18n.Text `json:"name"`
	Description i18n.Text `json:"description"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          i18n.Text       `json:"name"`
	Description   i18n.Text       `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	CategoryID    *int64          `json:"category_id"`
	SubCategoryID *int64          `json:"subcategory_id"`
	Category      *CategoryRef    `json:"category,omitempty"`
	SubCategory   *CategoryRef    `json:"subcategory,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID    int64
	SubCategoryID int64
	Search        string
	Limit         int
	Offset        int
}

type CreateProductRequest struct {
	Name          i18n.Text
	Description   i18n.Text
	Price         decimal.Decimal
	ImageURL      string
	CategoryID    *int64
	SubCategoryID *int64
}

// UpdateProductRequest carries only the fields being changed.
type UpdateProductRequest struct {
	Name          *i18n.Text
	Description   *i18n.Text
	Price         *decimal.Decimal
	ImageURL      *string
	CategoryID    *int64
	SubCategoryID *int64
}

type CategoryInput struct {
	Name        i18n.Text
	Description i18n.Text
	ImageURL    string
}

type UpdateCategoryRequest struct {
	Name        *i18n.Text
	Description *i18n.Text
	ImageURL    *string
}
