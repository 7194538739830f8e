package discounts

import (
	"errors"
	"strings"
	"time"

	"souq/internal/i18n"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("discount not found")
	ErrDuplicateCode = errors.New("discount code already exists")
	ErrNoFields      = errors.New("no fields to update")

	// Reasons a code cannot be applied to an order.
	ErrInactive  = errors.New("discount is not active")
	ErrExhausted = errors.New("discount usage limit reached")
	ErrMinOrder  = errors.New("order total below discount minimum")
)

type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

func (k Kind) Valid() bool { return k == KindPercent || k == KindFixed }

type Discount struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Label     i18n.Text       `json:"label"`
	Kind      Kind            `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	MinOrder  decimal.Decimal `json:"min_order"`
	MaxUses   *int            `json:"max_uses"`
	UsedCount int             `json:"used_count"`
	IsActive  bool            `json:"is_active"`
	StartDate *time.Time      `json:"start_date"`
	EndDate   *time.Time      `json:"end_date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizeCode is the stored form of a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Check reports why d cannot be applied to subtotal at now, or nil. The
// window is inclusive at both ends.
func (d *Discount) Check(now time.Time, subtotal decimal.Decimal) error {
	switch {
	case !d.IsActive:
		return ErrInactive
	case d.StartDate != nil && now.Before(*d.StartDate):
		return ErrInactive
	case d.EndDate != nil && now.After(*d.EndDate):
		return ErrInactive
	case d.MaxUses != nil && d.UsedCount >= *d.MaxUses:
		return ErrExhausted
	case subtotal.LessThan(d.MinOrder):
		return ErrMinOrder
	}
	return nil
}

// Amount is the discount taken off subtotal, rounded to cents and never
// more than subtotal.
func (d *Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	var amt decimal.Decimal
	switch d.Kind {
	case KindPercent:
		amt = subtotal.Mul(d.Value).Div(decimal.NewFromInt(100))
	case KindFixed:
		amt = d.Value
	default:
		return decimal.Zero
	}
	if amt.GreaterThan(subtotal) {
		amt = subtotal
	}
	if amt.IsNegative() {
		return decimal.Zero
	}
	return amt.Round(2)
}

// Quote is the result of applying a code to a cart.
type Quote struct {
	Discount *Discount       `json:"discount"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Amount   decimal.Decimal `json:"discount_amount"`
	Total    decimal.Decimal `json:"total"`
}

func NewQuote(d *Discount, subtotal decimal.Decimal) Quote {
	amt := d.Amount(subtotal)
	return Quote{Discount: d, Subtotal: subtotal, Amount: amt, Total: subtotal.Sub(amt)}
}

type Input struct {
	Code      string
	Label     i18n.Text
	Kind      Kind
	Value     decimal.Decimal
	MinOrder  decimal.Decimal
	MaxUses   *int
	IsActive  bool
	StartDate *time.Time
	EndDate   *time.Time
}

type UpdateRequest struct {
	Label     *i18n.Text
	Kind      *Kind
	Value     *decimal.Decimal
	MinOrder  *decimal.Decimal
	MaxUses   *int
	IsActive  *bool
	StartDate *time.Time
	EndDate   *time.Time
}
