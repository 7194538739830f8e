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
)

const productImageFolder = "souq/products"

type ProductForm struct {
	NameEn        *string `form:"name_en" validate:"omitempty,max=200"`
	NameAr        *string `form:"name_ar" validate:"omitempty,max=200"`
	DescriptionEn *string `form:"description_en" validate:"omitempty,max=5000"`
	DescriptionAr *string `form:"description_ar" validate:"omitempty,max=5000"`
	Price         *string `form:"price"`
	CategoryID    *int64  `form:"category_id" validate:"omitempty,gt=0"`
	SubCategoryID *int64  `form:"subcategory_id" validate:"omitempty,gt=0"`
}

func (f ProductForm) name() bilingual        { return bilingual{En: f.NameEn, Ar: f.NameAr} }
func (f ProductForm) description() bilingual { return bilingual{En: f.DescriptionEn, Ar: f.DescriptionAr} }

func productFilter(r *http.Request, p params.Pagination) (catalog.ProductFilter, error) {
	categoryID, err := queryID(r, "category")
	if err != nil {
		return catalog.ProductFilter{}, err
	}
	subCategoryID, err := queryID(r, "subcategory")
	if err != nil {
		return catalog.ProductFilter{}, err
	}
	return catalog.ProductFilter{
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		Search:        strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:         p.Limit,
		Offset:        p.Offset,
	}, nil
}

// listProductsHandler returns a page of products in the request language,
// each with its currently running advertisement if it has one.
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	filter, err := productFilter(r, p)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, total, err := app.store.Catalog.ListProducts(ctx, filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	now := app.now()
	active, err := app.store.Ads.ListActiveForProducts(ctx, now)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	items := present.Products(list, ads.Index(active, now), i18n.FromContext(r.Context()))
	if err := app.jsonResponse(w, http.StatusOK, params.NewPage(items, p, total)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := app.store.Catalog.GetProduct(ctx, id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	ad, err := app.store.Ads.FindActiveForProduct(ctx, id, app.now())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	view := present.ProductView(product, ad, i18n.FromContext(r.Context()))
	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

// adminListProductsHandler returns stored rows with both languages and
// without advertisements.
func (app *application) adminListProductsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	filter, err := productFilter(r, p)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, total, err := app.store.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, params.NewPage(list, p, total)); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := parseForm(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	req := catalog.CreateProductRequest{
		Name:          form.name().text(),
		Description:   form.description().text(),
		CategoryID:    form.CategoryID,
		SubCategoryID: form.SubCategoryID,
	}
	if req.Name.IsZero() {
		app.badRequestResponse(w, r, errors.New("name_en or name_ar is required"))
		return
	}
	price, err := formDecimal(form.Price)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if price == nil || price.IsNegative() {
		app.badRequestResponse(w, r, errors.New("price must be zero or more"))
		return
	}
	req.Price = *price

	imageURL, err := app.uploadFormImage(r, productImageFolder, "product")
	if err != nil {
		app.imageError(w, r, err)
		return
	}
	req.ImageURL = imageURL

	product, err := app.store.Catalog.CreateProduct(r.Context(), req)
	if err != nil {
		app.deleteImage(r, imageURL)
		app.catalogError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateProductHandler applies the sent fields only. A single language of
// a bilingual field can be changed without resending the other.
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var form ProductForm
	if err := parseForm(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	ctx := r.Context()
	current, err := app.store.Catalog.GetProduct(ctx, id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	var req catalog.UpdateProductRequest
	if b := form.name(); b.set() {
		name := b.merge(current.Name)
		if name.IsZero() {
			app.badRequestResponse(w, r, errors.New("name cannot be empty in both languages"))
			return
		}
		req.Name = &name
	}
	if b := form.description(); b.set() {
		desc := b.merge(current.Description)
		req.Description = &desc
	}
	if req.Price, err = formDecimal(form.Price); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		app.badRequestResponse(w, r, errors.New("price must be zero or more"))
		return
	}
	req.CategoryID = form.CategoryID
	req.SubCategoryID = form.SubCategoryID

	imageURL, err := app.uploadFormImage(r, productImageFolder, fmt.Sprintf("product_%d", id))
	if err != nil {
		app.imageError(w, r, err)
		return
	}
	if imageURL != "" {
		req.ImageURL = &imageURL
	}

	product, err := app.store.Catalog.UpdateProduct(ctx, id, req)
	if err != nil {
		app.deleteImage(r, imageURL)
		app.catalogError(w, r, err)
		return
	}
	if imageURL != "" && current.ImageURL != imageURL {
		app.deleteImage(r, current.ImageURL)
	}

	if err := app.jsonResponse(w, http.StatusOK, product); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product, err := app.store.Catalog.DeleteProduct(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.deleteImage(r, product.ImageURL)

	if err := app.message(w, r, http.StatusOK, "deleted"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		app.notFoundResponse(w, r, err)
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrSubCategoryMismatch),
		errors.Is(err, catalog.ErrNoFields):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
