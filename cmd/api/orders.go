package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"souq/internal/domain/discounts"
	"souq/internal/domain/orders"
	"souq/internal/domain/users"
	"souq/internal/i18n"
	"souq/internal/mailer"
	"souq/internal/params"
)

type CheckoutPayload struct {
	Shipping     orders.Shipping `json:"shipping"`
	DiscountCode string          `json:"discount_code" validate:"omitempty,max=32"`
}

type UpdateOrderStatusPayload struct {
	Status string `json:"status" validate:"required,orderstatus"`
}

// checkoutHandler turns the caller's cart into a pending order.
func (app *application) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	var payload CheckoutPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user := getUserFromContext(r)
	in := orders.CheckoutInput{
		Shipping:     payload.Shipping,
		DiscountCode: discounts.NormalizeCode(payload.DiscountCode),
		Currency:     app.config.store.currency,
	}

	detail, err := app.store.Orders.Checkout(ctx, user.ID, in, app.now())
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrCartEmpty):
			app.badRequestMessage(w, r, "cart_empty", err)
		default:
			app.discountError(w, r, err)
		}
		return
	}

	app.logger.Infow("order placed", "order", detail.OrderNumber, "user", user.ID, "total", detail.Total.String())
	app.sendOrderConfirmation(user, detail, i18n.FromContext(r.Context()))

	if err := app.localizedResponse(w, r, http.StatusCreated, detail, "discount.label"); err != nil {
		app.internalServerError(w, r, err)
	}
}

// sendOrderConfirmation mails the receipt in the language the order was
// placed in. Delivery runs in the background and failures are only logged.
func (app *application) sendOrderConfirmation(user *users.User, detail *orders.Detail, lang i18n.Lang) {
	if app.mailer == nil {
		return
	}

	email := mailer.OrderEmail{
		Subject:     app.messages.TData(lang, "order_subject", map[string]any{"OrderNumber": detail.OrderNumber}),
		Dir:         "ltr",
		Greeting:    app.messages.TData(lang, "order_greeting", map[string]any{"Name": user.Name}),
		OrderNumber: detail.OrderNumber,
		Total:       detail.Total.StringFixed(2),
		Currency:    detail.Currency,
	}
	if lang == i18n.Arabic {
		email.Dir = "rtl"
	}
	if detail.DiscountAmount.IsPositive() {
		email.Discount = detail.DiscountAmount.StringFixed(2)
	}
	for _, item := range detail.Items {
		email.Lines = append(email.Lines, mailer.OrderLine{
			Name:      item.Name.Resolve(lang),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.StringFixed(2),
		})
	}

	go func() {
		status, err := app.mailer.Send(mailer.OrderConfirmationTemplate, user.Name, user.Email, email)
		if err != nil {
			app.logger.Errorw("error sending order confirmation", "order", detail.OrderNumber, "error", err)
			return
		}
		app.logger.Infow("order confirmation sent", "order", detail.OrderNumber, "status code", status)
	}()
}

func (app *application) listMyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	user := getUserFromContext(r)

	list, total, err := app.store.Orders.ListByUser(r.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, params.NewPage(list, p, total)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getOrderHandler shows an order to its owner or an admin. Other callers
// get 404 so order ids cannot be probed.
func (app *application) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	detail, err := app.store.Orders.GetDetail(r.Context(), id)
	if err != nil {
		app.orderError(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if detail.UserID != user.ID && !user.IsAdmin() {
		app.notFoundResponse(w, r, fmt.Errorf("order %d belongs to another user", id))
		return
	}

	if err := app.localizedResponse(w, r, http.StatusOK, detail, "discount.label"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	status := orders.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("unknown order status %q", status))
		return
	}

	list, total, err := app.store.Orders.ListAll(r.Context(), status, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, params.NewPage(list, p, total)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "orderID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateOrderStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	order, err := app.store.Orders.UpdateStatus(r.Context(), id, orders.Status(payload.Status))
	if err != nil {
		app.orderError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, order); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) orderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, orders.ErrInvalidTransition):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
