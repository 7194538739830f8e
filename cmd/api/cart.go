package main

import (
	"errors"
	"net/http"

	"souq/internal/domain/carts"
)

type AddCartItemPayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gt=0,lte=99"`
}

type UpdateCartItemPayload struct {
	Quantity int `json:"quantity" validate:"required,gt=0,lte=99"`
}

func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	view, err := app.store.Carts.GetView(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.localizedResponse(w, r, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

// addCartItemHandler adds quantity (default 1) to the product's line,
// creating it when missing.
func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload AddCartItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	user := getUserFromContext(r)
	if err := app.store.Carts.AddItem(r.Context(), user.ID, payload.ProductID, payload.Quantity); err != nil {
		app.cartError(w, r, err)
		return
	}

	app.respondCart(w, r, user.ID, http.StatusCreated)
}

func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateCartItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.store.Carts.UpdateItemQty(r.Context(), user.ID, productID, payload.Quantity); err != nil {
		app.cartError(w, r, err)
		return
	}

	app.respondCart(w, r, user.ID, http.StatusOK)
}

func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.store.Carts.RemoveItem(r.Context(), user.ID, productID); err != nil {
		app.cartError(w, r, err)
		return
	}

	app.respondCart(w, r, user.ID, http.StatusOK)
}

func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if err := app.store.Carts.Clear(r.Context(), user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.message(w, r, http.StatusOK, "cart_cleared"); err != nil {
		app.internalServerError(w, r, err)
	}
}

// respondCart writes the cart as it is after a change.
func (app *application) respondCart(w http.ResponseWriter, r *http.Request, userID int64, status int) {
	view, err := app.store.Carts.GetView(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.localizedResponse(w, r, status, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) cartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, carts.ErrProductNotFound), errors.Is(err, carts.ErrItemNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, carts.ErrInvalidQuantity):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
