package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"souq/internal/db"
	"souq/internal/i18n"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	// Products
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, int, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) (*Product, error)

	// Categories
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) (*Category, error)
	CreateSubCategory(ctx context.Context, categoryID int64, in CategoryInput) (*SubCategory, error)
	DeleteSubCategory(ctx context.Context, categoryID, subID int64) (*SubCategory, error)
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.image_url, p.category_id, p.subcategory_id,
	p.created_at, p.updated_at,
	c.name, c.description, s.name, s.description`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN subcategories s ON s.id = p.subcategory_id`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var catName, catDesc, subName, subDesc *i18n.Text
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CategoryID, &p.SubCategoryID,
		&p.CreatedAt, &p.UpdatedAt,
		&catName, &catDesc, &subName, &subDesc,
	)
	if err != nil {
		return nil, err
	}
	p.Category = ref(p.CategoryID, catName, catDesc)
	p.SubCategory = ref(p.SubCategoryID, subName, subDesc)
	return &p, nil
}

func ref(id *int64, name, desc *i18n.Text) *CategoryRef {
	if id == nil || name == nil {
		return nil
	}
	r := &CategoryRef{ID: *id, Name: *name}
	if desc != nil {
		r.Description = *desc
	}
	return r
}

// ListProducts returns one page of products plus the total match count.
func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]Product, int, error) {
	var (
		where []string
		args  []any
	)
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.SubCategoryID > 0 {
		args = append(args, f.SubCategoryID)
		where = append(where, fmt.Sprintf("p.subcategory_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(p.name->>'en' ILIKE $%d OR p.name->>'ar' ILIKE $%d)", len(args), len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products p"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 15
	}
	args = append(args, limit, f.Offset)
	query := "SELECT" + productColumns + productFrom + clause +
		fmt.Sprintf(" ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}
	return products, total, nil
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, "SELECT"+productColumns+productFrom+" WHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := r.checkPlacement(ctx, req.CategoryID, req.SubCategoryID); err != nil {
		return nil, err
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, description, price, image_url, category_id, subcategory_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, req.Name, req.Description, req.Price, req.ImageURL, req.CategoryID, req.SubCategoryID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", mapFK(err))
	}
	return r.GetProduct(ctx, id)
}

// UpdateProduct updates an existing product with dynamic fields
func (r *Repository) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	current, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	catID, subID := current.CategoryID, current.SubCategoryID
	if req.CategoryID != nil {
		catID = req.CategoryID
	}
	if req.SubCategoryID != nil {
		subID = req.SubCategoryID
	}
	if req.CategoryID != nil || req.SubCategoryID != nil {
		if err := r.checkPlacement(ctx, catID, subID); err != nil {
			return nil, err
		}
	}

	u := newUpdate()
	u.setIf(req.Name != nil, "name", req.Name)
	u.setIf(req.Description != nil, "description", req.Description)
	u.setIf(req.Price != nil, "price", req.Price)
	u.setIf(req.ImageURL != nil, "image_url", req.ImageURL)
	u.setIf(req.CategoryID != nil, "category_id", req.CategoryID)
	u.setIf(req.SubCategoryID != nil, "subcategory_id", req.SubCategoryID)
	if u.empty() {
		return nil, ErrNoFields
	}

	tag, err := r.db.Exec(ctx, u.sql("products", id), u.args...)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", mapFK(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetProduct(ctx, id)
}

// DeleteProduct removes the row and returns it so the caller can clean up
// the stored image.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	tag, err := r.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return p, nil
}

// checkPlacement verifies that a subcategory, when given, sits under the
// given category.
func (r *Repository) checkPlacement(ctx context.Context, catID, subID *int64) error {
	if catID != nil {
		var exists bool
		if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)", *catID).Scan(&exists); err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return ErrCategoryNotFound
		}
	}
	if subID == nil {
		return nil
	}
	var parent int64
	err := r.db.QueryRow(ctx, "SELECT category_id FROM subcategories WHERE id = $1", *subID).Scan(&parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubCategoryMismatch
		}
		return fmt.Errorf("check subcategory: %w", err)
	}
	if catID == nil || *catID != parent {
		return ErrSubCategoryMismatch
	}
	return nil
}

// ListCategories returns every category with its subcategories nested.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM categories
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []Category{}
	index := map[int64]int{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.SubCategories = []SubCategory{}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	subs, err := r.listSubCategories(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if i, ok := index[s.CategoryID]; ok {
			categories[i].SubCategories = append(categories[i].SubCategories, s)
		}
	}
	return categories, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, image_url, created_at, updated_at
		FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	subs, err := r.listSubCategories(ctx, id)
	if err != nil {
		return nil, err
	}
	c.SubCategories = subs
	return &c, nil
}

// listSubCategories lists subcategories of one category, or of all when
// categoryID is zero.
func (r *Repository) listSubCategories(ctx context.Context, categoryID int64) ([]SubCategory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, category_id, name, description, image_url, created_at, updated_at
		FROM subcategories
		WHERE $1::bigint = 0 OR category_id = $1
		ORDER BY id
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	subs := []SubCategory{}
	for rows.Next() {
		var s SubCategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.ImageURL, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *Repository) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	c := Category{SubCategories: []SubCategory{}}
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, description, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, image_url, created_at, updated_at
	`, in.Name, in.Description, in.ImageURL).Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id int64, req UpdateCategoryRequest) (*Category, error) {
	u := newUpdate()
	u.setIf(req.Name != nil, "name", req.Name)
	u.setIf(req.Description != nil, "description", req.Description)
	u.setIf(req.ImageURL != nil, "image_url", req.ImageURL)
	if u.empty() {
		return nil, ErrNoFields
	}
	tag, err := r.db.Exec(ctx, u.sql("categories", id), u.args...)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetCategory(ctx, id)
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) (*Category, error) {
	c, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.Exec(ctx, "DELETE FROM categories WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("delete category: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateSubCategory(ctx context.Context, categoryID int64, in CategoryInput) (*SubCategory, error) {
	var s SubCategory
	err := r.db.QueryRow(ctx, `
		INSERT INTO subcategories (category_id, name, description, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, category_id, name, description, image_url, created_at, updated_at
	`, categoryID, in.Name, in.Description, in.ImageURL).Scan(
		&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.ImageURL, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create subcategory: %w", mapFK(err))
	}
	return &s, nil
}

func (r *Repository) DeleteSubCategory(ctx context.Context, categoryID, subID int64) (*SubCategory, error) {
	var s SubCategory
	err := r.db.QueryRow(ctx, `
		DELETE FROM subcategories WHERE id = $1 AND category_id = $2
		RETURNING id, category_id, name, description, image_url, created_at, updated_at
	`, subID, categoryID).Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.ImageURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete subcategory: %w", err)
	}
	return &s, nil
}

// mapFK turns a foreign key violation into ErrCategoryNotFound.
func mapFK(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrCategoryNotFound
	}
	return err
}

// update accumulates "col = $n" fragments for a partial UPDATE.
type update struct {
	parts []string
	args  []any
}

func newUpdate() *update { return &update{} }

func (u *update) setIf(ok bool, col string, v any) {
	if !ok {
		return
	}
	u.args = append(u.args, v)
	u.parts = append(u.parts, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

func (u *update) empty() bool { return len(u.parts) == 0 }

func (u *update) sql(table string, id int64) string {
	u.args = append(u.args, id)
	return fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d",
		table, strings.Join(u.parts, ", "), len(u.args))
}
