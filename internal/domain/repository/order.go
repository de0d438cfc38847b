package repository

import (
	"context"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Upsert inserts or refreshes an order keyed by source platform and source id.
	// Workflow fields of an existing row are preserved. created reports an insert.
	Upsert(ctx context.Context, order *model.Order) (stored *model.Order, created bool, err error)
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	FindBySource(ctx context.Context, platform, sourceID string) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	// Save persists workflow, contact and audit fields of an existing order.
	Save(ctx context.Context, order *model.Order) error
}
