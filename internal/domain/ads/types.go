package ads

import (
	"errors"
	"time"

	"souq/internal/i18n"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("advertisement not found")
	ErrNoFields = errors.New("no fields to update")
)

type Type string

const (
	TypeSlide       Type = "slide"
	TypeSideOffer   Type = "sideOffer"
	TypeWeeklyOffer Type = "weeklyOffer"
	TypeOther       Type = "other"
)

// Types lists every accepted advertisement type.
var Types = []Type{TypeSlide, TypeSideOffer, TypeWeeklyOffer, TypeOther}

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

type Advertisement struct {
	ID              int64            `json:"id"`
	Title           i18n.Text        `json:"title"`
	Description     i18n.Text        `json:"description"`
	ImageURL        string           `json:"image_url"`
	Link            string           `json:"link"`
	Type            Type             `json:"type"`
	IsActive        bool             `json:"is_active"`
	DisplayOrder    int              `json:"display_order"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	OriginalPrice   *decimal.Decimal `json:"original_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	Currency        string           `json:"currency"`
	ProductID       *int64           `json:"product_id"`
	Impressions     int64            `json:"impressions"`
	Clicks          int64            `json:"clicks"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ActiveAt reports whether the ad may be shown at now. Both window bounds
// are inclusive and a missing bound is open.
func (a *Advertisement) ActiveAt(now time.Time) bool {
	if a == nil || !a.IsActive {
		return false
	}
	if a.StartDate != nil && now.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && now.After(*a.EndDate) {
		return false
	}
	return true
}

// Prefer reports whether a should win over b when both are active for the
// same product: lower display order, then newer, then higher id.
func Prefer(a, b *Advertisement) bool {
	if a.DisplayOrder != b.DisplayOrder {
		return a.DisplayOrder < b.DisplayOrder
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Index maps product id to the single ad to show for it at now. Ads that
// are inactive at now or carry no product are ignored.
func Index(list []Advertisement, now time.Time) map[int64]*Advertisement {
	out := make(map[int64]*Advertisement)
	for i := range list {
		ad := &list[i]
		if ad.ProductID == nil || !ad.ActiveAt(now) {
			continue
		}
		if cur, ok := out[*ad.ProductID]; !ok || Prefer(ad, cur) {
			out[*ad.ProductID] = ad
		}
	}
	return out
}

type CreateRequest struct {
	Title           i18n.Text
	Description     i18n.Text
	ImageURL        string
	Link            string
	Type            Type
	IsActive        bool
	DisplayOrder    int
	StartDate       *time.Time
	EndDate         *time.Time
	OriginalPrice   *decimal.Decimal
	DiscountedPrice *decimal.Decimal
	Currency        string
	ProductID       *int64
}

// UpdateRequest carries only the fields being changed. The Clear flags
// null out their column.
type UpdateRequest struct {
	Title           *i18n.Text
	Description     *i18n.Text
	ImageURL        *string
	Link            *string
	Type            *Type
	IsActive        *bool
	DisplayOrder    *int
	StartDate       *time.Time
	EndDate         *time.Time
	ClearStart      bool
	ClearEnd        bool
	OriginalPrice   *decimal.Decimal
	DiscountedPrice *decimal.Decimal
	Currency        *string
	ProductID       *int64
	ClearProduct    bool
}

type DisplayOrderUpdate struct {
	ID           int64 `json:"id" validate:"required,gt=0"`
	DisplayOrder int   `json:"display_order" validate:"gte=0"`
}
