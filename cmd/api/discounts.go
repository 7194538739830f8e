package main

import (
	"errors"
	"net/http"

	"souq/internal/domain/discounts"
	"souq/internal/i18n"
	"souq/internal/params"

	"github.com/shopspring/decimal"
)

type DiscountPayload struct {
	Code      string           `json:"code" validate:"required,min=3,max=32,alphanum"`
	Label     i18n.Text        `json:"label"`
	Kind      string           `json:"kind" validate:"required,discountkind"`
	Value     decimal.Decimal  `json:"value"`
	MinOrder  *decimal.Decimal `json:"min_order"`
	MaxUses   *int             `json:"max_uses" validate:"omitempty,gt=0"`
	IsActive  *bool            `json:"is_active"`
	StartDate *string          `json:"start_date"`
	EndDate   *string          `json:"end_date"`
}

type UpdateDiscountPayload struct {
	Label     *i18n.Text       `json:"label"`
	Kind      *string          `json:"kind" validate:"omitempty,discountkind"`
	Value     *decimal.Decimal `json:"value"`
	MinOrder  *decimal.Decimal `json:"min_order"`
	MaxUses   *int             `json:"max_uses" validate:"omitempty,gt=0"`
	IsActive  *bool            `json:"is_active"`
	StartDate *string          `json:"start_date"`
	EndDate   *string          `json:"end_date"`
}

type ValidateDiscountPayload struct {
	Code string `json:"code" validate:"required,max=32"`
}

var (
	errDiscountValue = errors.New("value must be positive and a percentage at most 100")
	errMinOrder      = errors.New("min_order must not be negative")
	errDiscountDates = errors.New("end_date must not be before start_date")
)

func checkDiscountValue(kind discounts.Kind, value decimal.Decimal) error {
	if !value.IsPositive() || (kind == discounts.KindPercent && value.GreaterThan(decimal.NewFromInt(100))) {
		return errDiscountValue
	}
	return nil
}

// validateDiscountHandler quotes a code against the caller's current cart
// without consuming it.
func (app *application) validateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var payload ValidateDiscountPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	user := getUserFromContext(r)

	cart, err := app.store.Carts.GetView(ctx, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if len(cart.Items) == 0 {
		app.badRequestMessage(w, r, "cart_empty", errors.New("cart is empty"))
		return
	}

	discount, err := app.store.Discounts.GetByCode(ctx, discounts.NormalizeCode(payload.Code))
	if err != nil {
		app.discountError(w, r, err)
		return
	}
	if err := discount.Check(app.now(), cart.Subtotal); err != nil {
		app.discountError(w, r, err)
		return
	}

	quote := discounts.NewQuote(discount, cart.Subtotal)
	if err := app.localizedResponse(w, r, http.StatusOK, quote, "discount.label"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminListDiscountsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Discounts.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, params.NewPage(list, p, total)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createDiscountHandler(w http.ResponseWriter, r *http.Request) {
	var payload DiscountPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	in := discounts.Input{
		Code:     discounts.NormalizeCode(payload.Code),
		Label:    payload.Label.Trimmed(),
		Kind:     discounts.Kind(payload.Kind),
		Value:    payload.Value,
		MinOrder: decimal.Zero,
		MaxUses:  payload.MaxUses,
		IsActive: true,
	}
	if err := checkDiscountValue(in.Kind, in.Value); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.MinOrder != nil {
		if payload.MinOrder.IsNegative() {
			app.badRequestResponse(w, r, errMinOrder)
			return
		}
		in.MinOrder = *payload.MinOrder
	}
	if payload.IsActive != nil {
		in.IsActive = *payload.IsActive
	}

	var err error
	if in.StartDate, err = formDate(payload.StartDate, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if in.EndDate, err = formDate(payload.EndDate, true); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		app.badRequestResponse(w, r, errDiscountDates)
		return
	}

	discount, err := app.store.Discounts.Create(r.Context(), in)
	if err != nil {
		app.discountError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, discount); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateDiscountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "discountID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateDiscountPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	current, err := app.store.Discounts.GetByID(ctx, id)
	if err != nil {
		app.discountError(w, r, err)
		return
	}

	req := discounts.UpdateRequest{
		Value:    payload.Value,
		MinOrder: payload.MinOrder,
		MaxUses:  payload.MaxUses,
		IsActive: payload.IsActive,
	}
	if payload.Label != nil {
		label := payload.Label.Trimmed()
		req.Label = &label
	}

	kind, value := current.Kind, current.Value
	if payload.Kind != nil {
		k := discounts.Kind(*payload.Kind)
		req.Kind = &k
		kind = k
	}
	if payload.Value != nil {
		value = *payload.Value
	}
	if err := checkDiscountValue(kind, value); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.MinOrder != nil && req.MinOrder.IsNegative() {
		app.badRequestResponse(w, r, errMinOrder)
		return
	}

	if req.StartDate, err = formDate(payload.StartDate, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.EndDate, err = formDate(payload.EndDate, true); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	start, end := current.StartDate, current.EndDate
	if req.StartDate != nil {
		start = req.StartDate
	}
	if req.EndDate != nil {
		end = req.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		app.badRequestResponse(w, r, errDiscountDates)
		return
	}

	discount, err := app.store.Discounts.Update(ctx, id, req)
	if err != nil {
		app.discountError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, discount); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteDiscountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "discountID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Discounts.Delete(r.Context(), id); err != nil {
		app.discountError(w, r, err)
		return
	}

	if err := app.message(w, r, http.StatusOK, "deleted"); err != nil {
		app.internalServerError(w, r, err)
	}
}

// discountError maps discount failures. Codes that cannot be used answer
// with the same message whatever the reason, except a too small order.
func (app *application) discountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, discounts.ErrMinOrder):
		app.badRequestMessage(w, r, "discount_min_order", err)
	case errors.Is(err, discounts.ErrInactive), errors.Is(err, discounts.ErrExhausted):
		app.badRequestMessage(w, r, "discount_invalid", err)
	case errors.Is(err, discounts.ErrNotFound) && r.Method == http.MethodPost:
		app.badRequestMessage(w, r, "discount_invalid", err)
	case errors.Is(err, discounts.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, discounts.ErrDuplicateCode):
		app.conflictResponse(w, r, err)
	case errors.Is(err, discounts.ErrNoFields):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
