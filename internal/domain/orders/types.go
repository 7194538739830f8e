package orders

import (
	"errors"
	"time"

	"souq/internal/i18n"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanBecome reports whether an order in s may move to next.
func (s Status) CanBecome(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Shipping struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city" validate:"required,max=120"`
}

type Order struct {
	ID             int64           `json:"id"`
	OrderNumber    string          `json:"order_number"`
	UserID         int64           `json:"user_id"`
	Status         Status          `json:"status"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	DiscountCode   *string         `json:"discount_code"`
	Shipping       Shipping        `json:"shipping"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Item snapshots the product as it was at checkout.
type Item struct {
	ID        int64           `json:"id"`
	ProductID *int64          `json:"product_id"`
	Name      i18n.Text       `json:"name"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type DiscountRef struct {
	ID    int64     `json:"id"`
	Code  string    `json:"code"`
	Label i18n.Text `json:"label"`
}

type Detail struct {
	Order
	Items    []Item       `json:"items"`
	Discount *DiscountRef `json:"discount"`
}

type CheckoutInput struct {
	Shipping     Shipping
	DiscountCode string
	Currency     string
}
