package carts

import (
	"context"
	"errors"
	"fmt"

	"souq/internal/db"

	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	GetView(ctx context.Context, userID int64) (*View, error)
	AddItem(ctx context.Context, userID, productID int64, qty int) error
	UpdateItemQty(ctx context.Context, userID, productID int64, qty int) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// GetView returns the cart priced at current product prices.
func (r *Repository) GetView(ctx context.Context, userID int64) (*View, error) {
	lines, err := r.lines(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	return NewView(lines), nil
}

// LockedLines reads the cart with its rows locked. Only meaningful inside a
// transaction.
func (r *Repository) LockedLines(ctx context.Context, userID int64) ([]Line, error) {
	return r.lines(ctx, userID, true)
}

func (r *Repository) lines(ctx context.Context, userID int64, lock bool) ([]Line, error) {
	query := `
		SELECT ci.product_id, p.name, p.image_url, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.product_id`
	if lock {
		query += ` FOR UPDATE OF ci`
	}

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.ImageURL, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// AddItem adds qty of a product, merging with an existing line.
func (r *Repository) AddItem(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
	`, userID, productID, qty)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrProductNotFound
		}
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *Repository) UpdateItemQty(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID, qty)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, userID, productID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
