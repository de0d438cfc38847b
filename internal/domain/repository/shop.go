package repository

import (
	"context"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// ShopRepository stores Admin API credentials obtained through app installation.
type ShopRepository interface {
	SaveCredentials(ctx context.Context, creds model.ShopCredentials) error
	Credentials(ctx context.Context, shop string) (*model.ShopCredentials, error)
	LatestCredentials(ctx context.Context) (*model.ShopCredentials, error)
}
