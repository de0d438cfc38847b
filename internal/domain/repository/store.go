package repository

import "context"

// Store is a database that serves every portal repository.
type Store interface {
	Users() UserRepository
	Orders() OrderRepository
	Shops() ShopRepository
	HealthCheck(ctx context.Context) error
}
