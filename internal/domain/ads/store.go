package ads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"souq/internal/db"

	"github.com/jackc/pgx/v5"
)

type Store interface {
	ListActive(ctx context.Context, now time.Time, typ Type) ([]Advertisement, error)
	ListActiveForProducts(ctx context.Context, now time.Time) ([]Advertisement, error)
	FindActiveForProduct(ctx context.Context, productID int64, now time.Time) (*Advertisement, error)

	List(ctx context.Context, limit, offset int) ([]Advertisement, int, error)
	GetByID(ctx context.Context, id int64) (*Advertisement, error)
	Create(ctx context.Context, req CreateRequest) (*Advertisement, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Advertisement, error)
	Delete(ctx context.Context, id int64) (*Advertisement, error)
	Toggle(ctx context.Context, id int64) (*Advertisement, error)
	Reorder(ctx context.Context, updates []DisplayOrderUpdate) error
	IncrementImpressions(ctx context.Context, id int64) error
	IncrementClicks(ctx context.Context, id int64) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const columns = `
	id, title, description, image_url, link, type, is_active, display_order,
	start_date, end_date, original_price, discounted_price, currency, product_id,
	impressions, clicks, created_at, updated_at`

// activeWindow is the SQL form of Advertisement.ActiveAt with now bound to $1.
const activeWindow = `
	is_active
	AND (start_date IS NULL OR start_date <= $1)
	AND (end_date IS NULL OR end_date >= $1)`

// preference orders rows the same way Prefer does.
const preference = `display_order ASC, created_at DESC, id DESC`

func scan(row pgx.Row) (*Advertisement, error) {
	var a Advertisement
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.ImageURL, &a.Link, &a.Type, &a.IsActive, &a.DisplayOrder,
		&a.StartDate, &a.EndDate, &a.OriginalPrice, &a.DiscountedPrice, &a.Currency, &a.ProductID,
		&a.Impressions, &a.Clicks, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Advertisement, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query advertisements: %w", err)
	}
	defer rows.Close()

	list := []Advertisement{}
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan advertisement: %w", err)
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate advertisements: %w", err)
	}
	return list, nil
}

// ListActive returns ads showable at now in display order, optionally
// restricted to one type.
func (r *Repository) ListActive(ctx context.Context, now time.Time, typ Type) ([]Advertisement, error) {
	return r.query(ctx, `
		SELECT`+columns+`
		FROM advertisements
		WHERE`+activeWindow+`
		  AND ($2 = '' OR type = $2)
		ORDER BY `+preference, now, string(typ))
}

// ListActiveForProducts returns every ad showable at now that points at a
// product. Callers pick one per product with Index.
func (r *Repository) ListActiveForProducts(ctx context.Context, now time.Time) ([]Advertisement, error) {
	return r.query(ctx, `
		SELECT`+columns+`
		FROM advertisements
		WHERE`+activeWindow+`
		  AND product_id IS NOT NULL
		ORDER BY `+preference, now)
}

// FindActiveForProduct returns the preferred ad for one product, or nil
// when none is showable.
func (r *Repository) FindActiveForProduct(ctx context.Context, productID int64, now time.Time) (*Advertisement, error) {
	a, err := scan(r.db.QueryRow(ctx, `
		SELECT`+columns+`
		FROM advertisements
		WHERE`+activeWindow+`
		  AND product_id = $2
		ORDER BY `+preference+`
		LIMIT 1`, now, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find advertisement for product %d: %w", productID, err)
	}
	return a, nil
}

// List returns all ads with pagination for the admin dashboard.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Advertisement, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM advertisements`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count advertisements: %w", err)
	}
	list, err := r.query(ctx, `
		SELECT`+columns+`
		FROM advertisements
		ORDER BY `+preference+`
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Advertisement, error) {
	a, err := scan(r.db.QueryRow(ctx, `SELECT`+columns+` FROM advertisements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get advertisement: %w", err)
	}
	return a, nil
}

func (r *Repository) Create(ctx context.Context, req CreateRequest) (*Advertisement, error) {
	a, err := scan(r.db.QueryRow(ctx, `
		INSERT INTO advertisements (
			title, description, image_url, link, type, is_active, display_order,
			start_date, end_date, original_price, discounted_price, currency, product_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING`+columns,
		req.Title, req.Description, req.ImageURL, req.Link, string(req.Type), req.IsActive, req.DisplayOrder,
		req.StartDate, req.EndDate, req.OriginalPrice, req.DiscountedPrice, req.Currency, req.ProductID,
	))
	if err != nil {
		return nil, fmt.Errorf("create advertisement: %w", err)
	}
	return a, nil
}

// Update updates an existing ad with dynamic fields
func (r *Repository) Update(ctx context.Context, id int64, req UpdateRequest) (*Advertisement, error) {
	var (
		setParts []string
		args     []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.ImageURL != nil {
		set("image_url", *req.ImageURL)
	}
	if req.Link != nil {
		set("link", *req.Link)
	}
	if req.Type != nil {
		set("type", string(*req.Type))
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.DisplayOrder != nil {
		set("display_order", *req.DisplayOrder)
	}
	switch {
	case req.ClearStart:
		setParts = append(setParts, "start_date = NULL")
	case req.StartDate != nil:
		set("start_date", *req.StartDate)
	}
	switch {
	case req.ClearEnd:
		setParts = append(setParts, "end_date = NULL")
	case req.EndDate != nil:
		set("end_date", *req.EndDate)
	}
	if req.OriginalPrice != nil {
		set("original_price", *req.OriginalPrice)
	}
	if req.DiscountedPrice != nil {
		set("discounted_price", *req.DiscountedPrice)
	}
	if req.Currency != nil {
		set("currency", *req.Currency)
	}
	switch {
	case req.ClearProduct:
		setParts = append(setParts, "product_id = NULL")
	case req.ProductID != nil:
		set("product_id", *req.ProductID)
	}

	if len(setParts) == 0 {
		return nil, ErrNoFields
	}
	setParts = append(setParts, "updated_at = now()")
	args = append(args, id)

	a, err := scan(r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE advertisements
		SET %s
		WHERE id = $%d
		RETURNING`+columns, strings.Join(setParts, ", "), len(args)), args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update advertisement: %w", err)
	}
	return a, nil
}

// Delete removes an ad and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id int64) (*Advertisement, error) {
	a, err := scan(r.db.QueryRow(ctx, `DELETE FROM advertisements WHERE id = $1 RETURNING`+columns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete advertisement: %w", err)
	}
	return a, nil
}

// Toggle flips is_active.
func (r *Repository) Toggle(ctx context.Context, id int64) (*Advertisement, error) {
	a, err := scan(r.db.QueryRow(ctx, `
		UPDATE advertisements
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1
		RETURNING`+columns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("toggle advertisement: %w", err)
	}
	return a, nil
}

// Reorder updates display order for multiple ads in a transaction.
func (r *Repository) Reorder(ctx context.Context, updates []DisplayOrderUpdate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx,
			`UPDATE advertisements SET display_order = $1, updated_at = now() WHERE id = $2`,
			u.DisplayOrder, u.ID)
		if err != nil {
			return fmt.Errorf("reorder advertisement %d: %w", u.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("reorder advertisement %d: %w", u.ID, ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

func (r *Repository) IncrementImpressions(ctx context.Context, id int64) error {
	return r.bump(ctx, "impressions", id)
}

func (r *Repository) IncrementClicks(ctx context.Context, id int64) error {
	return r.bump(ctx, "clicks", id)
}

func (r *Repository) bump(ctx context.Context, col string, id int64) error {
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`UPDATE advertisements SET %[1]s = %[1]s + 1 WHERE id = $1`, col), id)
	if err != nil {
		return fmt.Errorf("increment %s: %w", col, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateExpired switches off active ads whose end date is before now
// and reports how many changed.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE advertisements
		SET is_active = FALSE, updated_at = now()
		WHERE is_active AND end_date IS NOT NULL AND end_date < $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired advertisements: %w", err)
	}
	return tag.RowsAffected(), nil
}
