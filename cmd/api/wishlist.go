package main

import (
	"errors"
	"net/http"

	"souq/internal/domain/wishlists"
)

func (app *application) getWishlistHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	items, err := app.store.Wishlists.List(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.localizedResponse(w, r, http.StatusOK, items); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) addToWishlistHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.store.Wishlists.Add(r.Context(), user.ID, productID); err != nil {
		switch {
		case errors.Is(err, wishlists.ErrProductNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.message(w, r, http.StatusCreated, "wishlist_added"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) removeFromWishlistHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := getUserFromContext(r)
	if err := app.store.Wishlists.Remove(r.Context(), user.ID, productID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.message(w, r, http.StatusOK, "wishlist_removed"); err != nil {
		app.internalServerError(w, r, err)
	}
}
