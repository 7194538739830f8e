package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"souq/internal/db"
	"souq/internal/domain/carts"
	"souq/internal/domain/discounts"
	"souq/internal/i18n"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type Store interface {
	Checkout(ctx context.Context, userID int64, in CheckoutInput, now time.Time) (*Detail, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	ListAll(ctx context.Context, status Status, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
}

type Repository struct {
	q   db.Querier
	gen *OrderNumberGenerator
}

func NewRepository(q db.Querier, gen *OrderNumberGenerator) *Repository {
	if gen == nil {
		panic("orders: OrderNumberGenerator is nil")
	}
	return &Repository{q: q, gen: gen}
}

const columns = `
	o.id, o.order_number, o.user_id, o.status, o.subtotal, o.discount_amount, o.total, o.currency,
	o.discount_code, o.shipping_name, o.shipping_phone, o.shipping_address, o.shipping_city,
	o.created_at, o.updated_at`

func scan(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount, &o.Total, &o.Currency,
		&o.DiscountCode, &o.Shipping.Name, &o.Shipping.Phone, &o.Shipping.Address, &o.Shipping.City,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Checkout turns the user's cart into an order in one transaction: the cart
// rows and the discount row are locked, the discount usage is recorded, the
// order and its item snapshots are written and the cart is emptied.
func (r *Repository) Checkout(ctx context.Context, userID int64, in CheckoutInput, now time.Time) (*Detail, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback(ctx)

	cartRepo := carts.NewRepository(tx)
	lines, err := cartRepo.LockedLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	view := carts.NewView(lines)

	var discount *discounts.Discount
	amount := decimal.Zero
	if code := strings.TrimSpace(in.DiscountCode); code != "" {
		discRepo := discounts.NewRepository(tx)
		discount, err = discRepo.LockByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if err := discount.Check(now, view.Subtotal); err != nil {
			return nil, err
		}
		amount = discount.Amount(view.Subtotal)
		if err := discRepo.Use(ctx, discount.ID); err != nil {
			return nil, err
		}
	}

	var discountID *int64
	var discountCode *string
	if discount != nil {
		discountID, discountCode = &discount.ID, &discount.Code
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (
			order_number, user_id, status, subtotal, discount_amount, total, currency,
			discount_id, discount_code, shipping_name, shipping_phone, shipping_address, shipping_city
		)
		VALUES ($1, $2, 'pending', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, r.gen.Generate(userID, now), userID, view.Subtotal, amount, view.Subtotal.Sub(amount), in.Currency,
		discountID, discountCode, in.Shipping.Name, in.Shipping.Phone, in.Shipping.Address, in.Shipping.City,
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range view.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, name, image_url, unit_price, quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, orderID, l.ProductID, l.Name, l.ImageURL, l.UnitPrice, l.Quantity, l.LineTotal)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert order items: %w", err)
	}

	if err := cartRepo.Clear(ctx, userID); err != nil {
		return nil, err
	}

	detail, err := getDetail(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return detail, nil
}

func (r *Repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	return getDetail(ctx, r.q, id)
}

func getDetail(ctx context.Context, q db.Querier, id int64) (*Detail, error) {
	var (
		d         Detail
		discID    *int64
		discCode  *string
		discLabel *i18n.Text
	)
	o := &d.Order
	err := q.QueryRow(ctx, `
		SELECT`+columns+`, d.id, d.code, d.label
		FROM orders o
		LEFT JOIN discounts d ON d.id = o.discount_id
		WHERE o.id = $1`, id).Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Subtotal, &o.DiscountAmount, &o.Total, &o.Currency,
		&o.DiscountCode, &o.Shipping.Name, &o.Shipping.Phone, &o.Shipping.Address, &o.Shipping.City,
		&o.CreatedAt, &o.UpdatedAt,
		&discID, &discCode, &discLabel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if discID != nil && discCode != nil {
		d.Discount = &DiscountRef{ID: *discID, Code: *discCode}
		if discLabel != nil {
			d.Discount.Label = *discLabel
		}
	}

	rows, err := q.Query(ctx, `
		SELECT id, product_id, name, image_url, unit_price, quantity, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	d.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.ImageURL, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return &d, nil
}

func (r *Repository) list(ctx context.Context, where string, args []any, limit, offset int) ([]Order, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM orders o `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`
		SELECT`+columns+`
		FROM orders o
		%s
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	list := []Order{}
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, *o)
	}
	return list, total, rows.Err()
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error) {
	return r.list(ctx, `WHERE o.user_id = $1`, []any{userID}, limit, offset)
}

// ListAll lists every order, optionally filtered by status.
func (r *Repository) ListAll(ctx context.Context, status Status, limit, offset int) ([]Order, int, error) {
	if status == "" {
		return r.list(ctx, "", nil, limit, offset)
	}
	return r.list(ctx, `WHERE o.status = $1`, []any{string(status)}, limit, offset)
}

// UpdateStatus moves an order to status if the transition is allowed.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load order status: %w", err)
	}
	if !current.CanBecome(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, status)
	}

	o, err := scan(tx.QueryRow(ctx, `
		UPDATE orders o SET status = $1, updated_at = now()
		WHERE o.id = $2
		RETURNING`+columns, string(status), id))
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return o, nil
}
