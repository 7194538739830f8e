package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"souq/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Store interface {
	List(ctx context.Context, limit, offset int) ([]Discount, int, error)
	GetByID(ctx context.Context, id int64) (*Discount, error)
	GetByCode(ctx context.Context, code string) (*Discount, error)
	Create(ctx context.Context, in Input) (*Discount, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Discount, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

const columns = `
	id, code, label, kind, value, min_order, max_uses, used_count, is_active,
	start_date, end_date, created_at, updated_at`

func scan(row pgx.Row) (*Discount, error) {
	var d Discount
	err := row.Scan(&d.ID, &d.Code, &d.Label, &d.Kind, &d.Value, &d.MinOrder, &d.MaxUses, &d.UsedCount,
		&d.IsActive, &d.StartDate, &d.EndDate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) one(ctx context.Context, op, sql string, args ...any) (*Discount, error) {
	d, err := scan(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.As(err, &pgErr) && pgErr.Code == "23505":
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("%s discount: %w", op, err)
	}
	return d, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]Discount, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM discounts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count discounts: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT`+columns+` FROM discounts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	list := []Discount{}
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan discount: %w", err)
		}
		list = append(list, *d)
	}
	return list, total, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Discount, error) {
	return r.one(ctx, "get", `SELECT`+columns+` FROM discounts WHERE id = $1`, id)
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Discount, error) {
	return r.one(ctx, "get", `SELECT`+columns+` FROM discounts WHERE code = $1`, NormalizeCode(code))
}

// LockByCode loads a discount with its row locked for a usage increment.
func (r *Repository) LockByCode(ctx context.Context, code string) (*Discount, error) {
	return r.one(ctx, "lock", `SELECT`+columns+` FROM discounts WHERE code = $1 FOR UPDATE`, NormalizeCode(code))
}

// Use records one redemption.
func (r *Repository) Use(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE discounts SET used_count = used_count + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("use discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, in Input) (*Discount, error) {
	return r.one(ctx, "create", `
		INSERT INTO discounts (code, label, kind, value, min_order, max_uses, is_active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING`+columns,
		NormalizeCode(in.Code), in.Label, string(in.Kind), in.Value, in.MinOrder, in.MaxUses,
		in.IsActive, in.StartDate, in.EndDate)
}

func (r *Repository) Update(ctx context.Context, id int64, req UpdateRequest) (*Discount, error) {
	var (
		parts []string
		args  []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		parts = append(parts, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if req.Label != nil {
		set("label", *req.Label)
	}
	if req.Kind != nil {
		set("kind", string(*req.Kind))
	}
	if req.Value != nil {
		set("value", *req.Value)
	}
	if req.MinOrder != nil {
		set("min_order", *req.MinOrder)
	}
	if req.MaxUses != nil {
		set("max_uses", *req.MaxUses)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
	}
	if req.StartDate != nil {
		set("start_date", *req.StartDate)
	}
	if req.EndDate != nil {
		set("end_date", *req.EndDate)
	}
	if len(parts) == 0 {
		return nil, ErrNoFields
	}
	args = append(args, id)
	return r.one(ctx, "update", fmt.Sprintf(`
		UPDATE discounts SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING`+columns, strings.Join(parts, ", "), len(args)), args...)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
