package repository

import (
	"context"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// UserRepository describes persistence operations for admins and partners.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// ListByRole returns users of role in insertion order.
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	// Delete unassigns the user's orders and removes the user atomically.
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
