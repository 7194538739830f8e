package carts

import (
	"errors"

	"souq/internal/i18n"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Line is a cart item priced at the product's current price.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      i18n.Text       `json:"name"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type View struct {
	Items    []Line          `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// NewView totals lines into a View.
func NewView(lines []Line) *View {
	v := &View{Items: lines, Subtotal: decimal.Zero}
	if v.Items == nil {
		v.Items = []Line{}
	}
	for i := range v.Items {
		l := &v.Items[i]
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		v.Subtotal = v.Subtotal.Add(l.LineTotal)
		v.Count += l.Quantity
	}
	return v
}
