package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 30 * time.Second

// Options tune the pool. Zero values keep the pgxpool defaults.
type Options struct {
	MaxConns    int32
	MaxIdleTime string
}

// New opens a pgx pool on addr and pings it before returning. Every query
// runs with the UTC session time zone so ad and discount windows compare in
// one zone.
func New(addr string, opts Options) (*pgxpool.Pool, error) {
	if addr == "" {
		return nil, errors.New("database address is empty")
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		return nil, fmt.Errorf("parse database address: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MaxIdleTime != "" {
		idle, err := time.ParseDuration(opts.MaxIdleTime)
		if err != nil {
			return nil, fmt.Errorf("parse max idle time %q: %w", opts.MaxIdleTime, err)
		}
		config.MaxConnIdleTime = idle
	}
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
