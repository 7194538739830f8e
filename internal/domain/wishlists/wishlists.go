package wishlists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"souq/internal/db"
	"souq/internal/domain/catalog"

	"github.com/jackc/pgx/v5/pgconn"
)

var ErrProductNotFound = errors.New("product not found")

// Item is one saved product, joined with the product row.
type Item struct {
	ProductID int64           `json:"product_id"`
	Product   catalog.Product `json:"product"`
	AddedAt   time.Time       `json:"added_at"`
}

type Store interface {
	List(ctx context.Context, userID int64) ([]Item, error)
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) error
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) List(ctx context.Context, userID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.created_at,
		       p.id, p.name, p.description, p.price, p.image_url, p.category_id, p.subcategory_id,
		       p.created_at, p.updated_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		p := &it.Product
		if err := rows.Scan(&it.AddedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CategoryID, &p.SubCategoryID,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		it.ProductID = p.ID
		items = append(items, it)
	}
	return items, rows.Err()
}

// Add saves a product; adding one twice is a no-op.
func (r *Repository) Add(ctx context.Context, userID, productID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrProductNotFound
		}
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// Remove deletes a saved product; removing a missing one is a no-op.
func (r *Repository) Remove(ctx context.Context, userID, productID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}
