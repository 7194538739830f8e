package main

import (
	"errors"
	"fmt"
	"net/http"

	"souq/internal/domain/catalog"
	"souq/internal/i18n"
	"souq/internal/present"
)

const categoryImageFolder = "souq/categories"

type CategoryForm struct {
	NameEn        *string `form:"name_en" validate:"omitempty,max=100"`
	NameAr        *string `form:"name_ar" validate:"omitempty,max=100"`
	DescriptionEn *string `form:"description_en" validate:"omitempty,max=2000"`
	DescriptionAr *string `form:"description_ar" validate:"omitempty,max=2000"`
}

func (f CategoryForm) name() bilingual        { return bilingual{En: f.NameEn, Ar: f.NameAr} }
func (f CategoryForm) description() bilingual { return bilingual{En: f.DescriptionEn, Ar: f.DescriptionAr} }

// categories serves the tree from the cache when it can.
func (app *application) categories(r *http.Request) ([]catalog.Category, error) {
	ctx := r.Context()
	if list, ok := app.categoryCache.Get(ctx); ok {
		return list, nil
	}

	list, err := app.store.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	app.categoryCache.Set(ctx, list)
	return list, nil
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.categories(r)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	views := present.Categories(list, i18n.FromContext(r.Context()))
	if err := app.jsonResponse(w, http.StatusOK, views); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.store.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	view := present.CategoryView(category, i18n.FromContext(r.Context()))
	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Catalog.ListCategories(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// categoryInput reads a create form shared by categories and subcategories.
func (app *application) categoryInput(w http.ResponseWriter, r *http.Request, prefix string) (catalog.CategoryInput, bool) {
	var form CategoryForm
	if err := parseForm(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return catalog.CategoryInput{}, false
	}

	in := catalog.CategoryInput{
		Name:        form.name().text(),
		Description: form.description().text(),
	}
	if in.Name.IsZero() {
		app.badRequestResponse(w, r, errors.New("name_en or name_ar is required"))
		return in, false
	}

	imageURL, err := app.uploadFormImage(r, categoryImageFolder, prefix)
	if err != nil {
		app.imageError(w, r, err)
		return in, false
	}
	in.ImageURL = imageURL
	return in, true
}

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	in, ok := app.categoryInput(w, r, "category")
	if !ok {
		return
	}

	category, err := app.store.Catalog.CreateCategory(r.Context(), in)
	if err != nil {
		app.deleteImage(r, in.ImageURL)
		app.catalogError(w, r, err)
		return
	}
	app.categoryCache.Invalidate(r.Context())

	if err := app.jsonResponse(w, http.StatusCreated, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var form CategoryForm
	if err := parseForm(w, r, &form); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	ctx := r.Context()
	current, err := app.store.Catalog.GetCategory(ctx, id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}

	var req catalog.UpdateCategoryRequest
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

	imageURL, err := app.uploadFormImage(r, categoryImageFolder, fmt.Sprintf("category_%d", id))
	if err != nil {
		app.imageError(w, r, err)
		return
	}
	if imageURL != "" {
		req.ImageURL = &imageURL
	}

	category, err := app.store.Catalog.UpdateCategory(ctx, id, req)
	if err != nil {
		app.deleteImage(r, imageURL)
		app.catalogError(w, r, err)
		return
	}
	if imageURL != "" && current.ImageURL != imageURL {
		app.deleteImage(r, current.ImageURL)
	}
	app.categoryCache.Invalidate(ctx)

	if err := app.jsonResponse(w, http.StatusOK, category); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCategoryHandler removes a category and its subcategories. Products
// in it become uncategorized.
func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	category, err := app.store.Catalog.DeleteCategory(r.Context(), id)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.deleteImage(r, category.ImageURL)
	for _, sub := range category.SubCategories {
		app.deleteImage(r, sub.ImageURL)
	}
	app.categoryCache.Invalidate(r.Context())

	if err := app.message(w, r, http.StatusOK, "deleted"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createSubCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer cleanupForm(r)

	in, ok := app.categoryInput(w, r, fmt.Sprintf("category_%d_sub", categoryID))
	if !ok {
		return
	}

	sub, err := app.store.Catalog.CreateSubCategory(r.Context(), categoryID, in)
	if err != nil {
		app.deleteImage(r, in.ImageURL)
		app.catalogError(w, r, err)
		return
	}
	app.categoryCache.Invalidate(r.Context())

	if err := app.jsonResponse(w, http.StatusCreated, sub); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteSubCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := idParam(r, "categoryID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	subID, err := idParam(r, "subID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sub, err := app.store.Catalog.DeleteSubCategory(r.Context(), categoryID, subID)
	if err != nil {
		app.catalogError(w, r, err)
		return
	}
	app.deleteImage(r, sub.ImageURL)
	app.categoryCache.Invalidate(r.Context())

	if err := app.message(w, r, http.StatusOK, "deleted"); err != nil {
		app.internalServerError(w, r, err)
	}
}
