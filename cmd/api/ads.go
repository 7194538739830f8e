package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"souq/internal/domain/ads"
	"souq/internal/domain/catalog"
	"souq/internal/i18n"
	"souq/internal/params"
	"souq/internal/present"

	"github.com/shopspring/decimal"
)

const adImageFolder = "souq/advertisements"

var (
	errAdWindow = errors.New("end_date must not be before start_date")
	errAdPrice  = errors.New("discounted_price must not exceed original_price")
)

type AdForm struct {
	TitleEn         *string `form:"title_en" validate:"omitempty,max=200"`
	TitleAr         *string `form:"title_ar" validate:"omitempty,max=200"`
	DescriptionEn   *string `form:"description_en" validate:"omitempty,max=2000"`
	DescriptionAr   *string `form:"description_ar" validate:"omitempty,max=2000"`
	Link            *string `form:"link" validate:"omitempty,max=500"`
	Type            *string `form:"type" validate:"omitempty,adtype"`
	IsActive        *bool   `form:"is_active"`
	DisplayOrder    *int    `form:"display_order" validate:"omitempty,gte=0"`
	StartDate       *string `form:"start_date"`
	EndDate         *string `form:"end_date"`
	OriginalPrice   *string `form:"original_price"`
	DiscountedPrice *string `form:"discounted_price"`
	Currency        *string `form:"currency" validate:"omitempty,len=3,alpha"`
	ProductID       *int64  `form:"product_id" validate:"omitempty,gt=0"`
	ClearStartDate  bool    `form:"clear_start_date"`
	ClearEndDate    bool    `form:"clear_end_date"`
	ClearProduct    bool    `form:"clear_product"`
}

func (f AdForm) title() bilingual       { return bilingual{En: f.TitleEn, Ar: f.TitleAr} }
func (f AdForm) description() bilingual { return bilingual{En: f.DescriptionEn, Ar: f.DescriptionAr} }

type ReorderAdsPayload struct {
	Items []ads.DisplayOrderUpdate `json:"items" validate:"required,min=1,dive"`
}

// listActiveAdsHandler returns the advertisements running now, optionally
// of one type, in display order.
func (app *application) listActiveAdsHandler(w http.ResponseWriter, r *http.Request) {
	typ := ads.Type(strings.TrimSpace(r.URL.Query().Get("type")))
	if typ != "" && !typ.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("unknown advertisement type %q", typ))
		return
	}

	list, err := app.store.Ads.ListActive(r.Context(), app.now(), typ)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, present.Ads(list, i18n.FromContext(r.Context()))); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) trackImpressionHandler(w http.ResponseWriter, r *http.Request) {
	app.track(w, r, app.store.Ads.IncrementImpressions)
}

func (app *application) trackClickHandler(w http.ResponseWriter, r *http.Request) {
	app.track(w, r, app.store.Ads.IncrementClicks)
}

func (app *application) track(w http.ResponseWriter, r *http.Request, bump func(context.Context, int64) error) {
	id, err := idParam(r, "adID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := bump(r.Context(), id); err != nil {
		app.adError(w, r, err)
		return
	}

	if err := app.message(w, r, http.StatusOK, "tracked"); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminListAdsHandler returns every stored ad, running or not, with both
// languages.
func (app *application) adminListAdsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	list, total, err := app.store.Ads.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, params.NewPage(list, p, total)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createAdHandler(w http.ResponseWriter, r *http.Request) {
	var form AdForm
	if err := parseForm(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	req := ads.CreateRequest{
		Title:       form.title().text(),
		Description: form.description().text(),
		Type:        ads.TypeSlide,
		IsActive:    true,
		Currency:    app.config.store.currency,
		ProductID:   form.ProductID,
	}
	if req.Title.IsZero() {
		app.badRequestResponse(w, r, errors.New("title_en or title_ar is required"))
		return
	}
	if form.Link != nil {
		req.Link = strings.TrimSpace(*form.Link)
	}
	if form.Type != nil {
		req.Type = ads.Type(*form.Type)
	}
	if form.IsActive != nil {
		req.IsActive = *form.IsActive
	}
	if form.DisplayOrder != nil {
		req.DisplayOrder = *form.DisplayOrder
	}
	if form.Currency != nil {
		req.Currency = strings.ToUpper(*form.Currency)
	}

	var err error
	if req.StartDate, err = formDate(form.StartDate, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.EndDate, err = formDate(form.EndDate, true); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.OriginalPrice, err = formDecimal(form.OriginalPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.DiscountedPrice, err = formDecimal(form.DiscountedPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := checkAd(req.StartDate, req.EndDate, req.OriginalPrice, req.DiscountedPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !app.productExists(w, r, req.ProductID) {
		return
	}

	imageURL, err := app.uploadFormImage(r, adImageFolder, "ad")
	if err != nil {
		app.imageError(w, r, err)
		return
	}
	req.ImageURL = imageURL

	ad, err := app.store.Ads.Create(r.Context(), req)
	if err != nil {
		app.deleteImage(r, imageURL)
		app.adError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, ad); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "adID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var form AdForm
	if err := parseForm(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	ctx := r.Context()
	current, err := app.store.Ads.GetByID(ctx, id)
	if err != nil {
		app.adError(w, r, err)
		return
	}

	req := ads.UpdateRequest{
		IsActive:     form.IsActive,
		DisplayOrder: form.DisplayOrder,
		ProductID:    form.ProductID,
		ClearStart:   form.ClearStartDate,
		ClearEnd:     form.ClearEndDate,
		ClearProduct: form.ClearProduct,
	}
	if b := form.title(); b.set() {
		title := b.merge(current.Title)
		if title.IsZero() {
			app.badRequestResponse(w, r, errors.New("title cannot be empty in both languages"))
			return
		}
		req.Title = &title
	}
	if b := form.description(); b.set() {
		desc := b.merge(current.Description)
		req.Description = &desc
	}
	if form.Link != nil {
		link := strings.TrimSpace(*form.Link)
		req.Link = &link
	}
	if form.Type != nil {
		typ := ads.Type(*form.Type)
		req.Type = &typ
	}
	if form.Currency != nil {
		currency := strings.ToUpper(*form.Currency)
		req.Currency = &currency
	}
	if req.StartDate, err = formDate(form.StartDate, false); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.EndDate, err = formDate(form.EndDate, true); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.OriginalPrice, err = formDecimal(form.OriginalPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.DiscountedPrice, err = formDecimal(form.DiscountedPrice); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// The window and prices are checked as they will be after the update.
	start, end := current.StartDate, current.EndDate
	if req.ClearStart {
		start = nil
	} else if req.StartDate != nil {
		start = req.StartDate
	}
	if req.ClearEnd {
		end = nil
	} else if req.EndDate != nil {
		end = req.EndDate
	}
	original, discounted := current.OriginalPrice, current.DiscountedPrice
	if req.OriginalPrice != nil {
		original = req.OriginalPrice
	}
	if req.DiscountedPrice != nil {
		discounted = req.DiscountedPrice
	}
	if err := checkAd(start, end, original, discounted); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !req.ClearProduct && !app.productExists(w, r, req.ProductID) {
		return
	}

	imageURL, err := app.uploadFormImage(r, adImageFolder, fmt.Sprintf("ad_%d", id))
	if err != nil {
		app.imageError(w, r, err)
		return
	}
	if imageURL != "" {
		req.ImageURL = &imageURL
	}

	ad, err := app.store.Ads.Update(ctx, id, req)
	if err != nil {
		app.deleteImage(r, imageURL)
		app.adError(w, r, err)
		return
	}
	if imageURL != "" && current.ImageURL != imageURL {
		app.deleteImage(r, current.ImageURL)
	}

	if err := app.jsonResponse(w, http.StatusOK, ad); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "adID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ad, err := app.store.Ads.Delete(r.Context(), id)
	if err != nil {
		app.adError(w, r, err)
		return
	}
	app.deleteImage(r, ad.ImageURL)

	if err := app.message(w, r, http.StatusOK, "deleted"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) toggleAdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "adID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ad, err := app.store.Ads.Toggle(r.Context(), id)
	if err != nil {
		app.adError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, ad); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) reorderAdsHandler(w http.ResponseWriter, r *http.Request) {
	var payload ReorderAdsPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := app.store.Ads.Reorder(ctx, payload.Items); err != nil {
		app.adError(w, r, err)
		return
	}

	if err := app.message(w, r, http.StatusOK, "updated"); err != nil {
		app.internalServerError(w, r, err)
	}
}

// productExists answers 400 and returns false when id names no product.
func (app *application) productExists(w http.ResponseWriter, r *http.Request, id *int64) bool {
	if id == nil {
		return true
	}
	if _, err := app.store.Catalog.GetProduct(r.Context(), *id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.badRequestResponse(w, r, fmt.Errorf("product %d does not exist", *id))
		} else {
			app.internalServerError(w, r, err)
		}
		return false
	}
	return true
}

func (app *application) adError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ads.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, ads.ErrNoFields):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}

func checkAd(start, end *time.Time, original, discounted *decimal.Decimal) error {
	if start != nil && end != nil && end.Before(*start) {
		return errAdWindow
	}
	if original != nil && discounted != nil && discounted.GreaterThan(*original) {
		return errAdPrice
	}
	return nil
}
