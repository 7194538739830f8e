// Package present builds the language-resolved views returned by the
// public endpoints. Every bilingual field is declared here as a plain
// string; admin endpoints skip this package and return rows as stored.
package present

import (
	"time"

	"souq/internal/domain/ads"
	"souq/internal/domain/catalog"
	"souq/internal/i18n"

	"github.com/shopspring/decimal"
)

type Advertisement struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ImageURL        string           `json:"image_url"`
	Link            string           `json:"link"`
	Type            ads.Type         `json:"type"`
	DisplayOrder    int              `json:"display_order"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	OriginalPrice   *decimal.Decimal `json:"original_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	Currency        string           `json:"currency"`
	ProductID       *int64           `json:"product_id"`
}

type CategoryRef struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	CategoryID    *int64          `json:"category_id"`
	SubCategoryID *int64          `json:"subcategory_id"`
	Category      *CategoryRef    `json:"category,omitempty"`
	SubCategory   *CategoryRef    `json:"subcategory,omitempty"`
	Advertisement *Advertisement  `json:"advertisement,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type SubCategory struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	ImageURL      string        `json:"image_url"`
	SubCategories []SubCategory `json:"subcategories"`
}

func Ad(a *ads.Advertisement, lang i18n.Lang) *Advertisement {
	if a == nil {
		return nil
	}
	return &Advertisement{
		ID:              a.ID,
		Title:           a.Title.Resolve(lang),
		Description:     a.Description.Resolve(lang),
		ImageURL:        a.ImageURL,
		Link:            a.Link,
		Type:            a.Type,
		DisplayOrder:    a.DisplayOrder,
		StartDate:       a.StartDate,
		EndDate:         a.EndDate,
		OriginalPrice:   a.OriginalPrice,
		DiscountedPrice: a.DiscountedPrice,
		Currency:        a.Currency,
		ProductID:       a.ProductID,
	}
}

func Ads(list []ads.Advertisement, lang i18n.Lang) []Advertisement {
	out := make([]Advertisement, 0, len(list))
	for i := range list {
		out = append(out, *Ad(&list[i], lang))
	}
	return out
}

func categoryRef(r *catalog.CategoryRef, lang i18n.Lang) *CategoryRef {
	if r == nil {
		return nil
	}
	return &CategoryRef{ID: r.ID, Name: r.Name.Resolve(lang), Description: r.Description.Resolve(lang)}
}

// ProductView resolves p and attaches ad when it is non-nil.
func ProductView(p *catalog.Product, ad *ads.Advertisement, lang i18n.Lang) Product {
	return Product{
		ID:            p.ID,
		Name:          p.Name.Resolve(lang),
		Description:   p.Description.Resolve(lang),
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		SubCategoryID: p.SubCategoryID,
		Category:      categoryRef(p.Category, lang),
		SubCategory:   categoryRef(p.SubCategory, lang),
		Advertisement: Ad(ad, lang),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// Products resolves a page of products, attaching the indexed ad for each
// one. A nil index attaches nothing.
func Products(list []catalog.Product, index map[int64]*ads.Advertisement, lang i18n.Lang) []Product {
	out := make([]Product, 0, len(list))
	for i := range list {
		out = append(out, ProductView(&list[i], index[list[i].ID], lang))
	}
	return out
}

func CategoryView(c *catalog.Category, lang i18n.Lang) Category {
	subs := make([]SubCategory, 0, len(c.SubCategories))
	for _, s := range c.SubCategories {
		subs = append(subs, SubCategory{
			ID:          s.ID,
			CategoryID:  s.CategoryID,
			Name:        s.Name.Resolve(lang),
			Description: s.Description.Resolve(lang),
			ImageURL:    s.ImageURL,
		})
	}
	return Category{
		ID:            c.ID,
		Name:          c.Name.Resolve(lang),
		Description:   c.Description.Resolve(lang),
		ImageURL:      c.ImageURL,
		SubCategories: subs,
	}
}

func Categories(list []catalog.Category, lang i18n.Lang) []Category {
	out := make([]Category, 0, len(list))
	for i := range list {
		out = append(out, CategoryView(&list[i], lang))
	}
	return out
}
