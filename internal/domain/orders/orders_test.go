package orders

import (
	"context"
	"testing"
	"time"

	"souq/internal/db/dbtest"
	"souq/internal/domain/carts"
	"souq/internal/domain/catalog"
	"souq/internal/domain/discounts"
	"souq/internal/domain/users"
	"souq/internal/i18n"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	tx := dbtest.Tx(t)
	ctx := context.Background()
	now := time.Now()

	user := &users.User{Name: "Sara", Email: "checkout@souq.test"}
	require.NoError(t, user.Password.Set("long-enough"))
	require.NoError(t, users.NewRepository(tx).Create(ctx, user))

	product, err := catalog.NewRepository(tx).CreateProduct(ctx, catalog.CreateProductRequest{
		Name:  i18n.Text{En: "Dates", Ar: "تمر"},
		Price: decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)

	cartRepo := carts.NewRepository(tx)
	require.NoError(t, cartRepo.AddItem(ctx, user.ID, product.ID, 4))

	maxUses := 1
	_, err = discounts.NewRepository(tx).Create(ctx, discounts.Input{
		Code:     "eid20",
		Label:    i18n.Text{En: "Eid", Ar: "عيد"},
		Kind:     discounts.KindPercent,
		Value:    decimal.NewFromInt(20),
		MaxUses:  &maxUses,
		IsActive: true,
	})
	require.NoError(t, err)

	repo := NewRepository(tx, NewOrderNumberGenerator("test"))
	shipping := Shipping{Name: "Sara", Phone: "0500000000", Address: "King Fahd Rd", City: "Riyadh"}

	detail, err := repo.Checkout(ctx, user.ID, CheckoutInput{Shipping: shipping, DiscountCode: "EID20", Currency: "SAR"}, now)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, detail.Status)
	assert.True(t, detail.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, detail.DiscountAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, detail.Total.Equal(decimal.NewFromInt(80)))
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "تمر", detail.Items[0].Name.Ar)
	require.NotNil(t, detail.Discount)
	assert.Equal(t, "عيد", detail.Discount.Label.Ar)

	view, err := cartRepo.GetView(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	// The code has been used up and the cart is empty again.
	require.NoError(t, cartRepo.AddItem(ctx, user.ID, product.ID, 1))
	_, err = repo.Checkout(ctx, user.ID, CheckoutInput{Shipping: shipping, DiscountCode: "EID20", Currency: "SAR"}, now)
	assert.ErrorIs(t, err, discounts.ErrExhausted)
	require.NoError(t, cartRepo.Clear(ctx, user.ID))

	_, err = repo.Checkout(ctx, user.ID, CheckoutInput{Shipping: shipping, Currency: "SAR"}, now)
	assert.ErrorIs(t, err, ErrCartEmpty)

	updated, err := repo.UpdateStatus(ctx, detail.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)
	_, err = repo.UpdateStatus(ctx, detail.ID, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	mine, total, err := repo.ListByUser(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, detail.OrderNumber, mine[0].OrderNumber)
}
