package storage

import (
	"souq/internal/db"
	"souq/internal/domain/ads"
	"souq/internal/domain/carts"
	"souq/internal/domain/catalog"
	"souq/internal/domain/discounts"
	"souq/internal/domain/orders"
	"souq/internal/domain/users"
	"souq/internal/domain/wishlists"
)

// Container holds one Store per domain. Handlers depend on the interfaces
// so tests can swap in fakes.
type Container struct {
	Users     users.Store
	Catalog   catalog.Store
	Ads       ads.Store
	Wishlists wishlists.Store
	Carts     carts.Store
	Discounts discounts.Store
	Orders    orders.Store
}

func NewContainer(q db.Querier, orderSecret string) *Container {
	return &Container{
		Users:     users.NewRepository(q),
		Catalog:   catalog.NewRepository(q),
		Ads:       ads.NewRepository(q),
		Wishlists: wishlists.NewRepository(q),
		Carts:     carts.NewRepository(q),
		Discounts: discounts.NewRepository(q),
		Orders:    orders.NewRepository(q, orders.NewOrderNumberGenerator(orderSecret)),
	}
}
