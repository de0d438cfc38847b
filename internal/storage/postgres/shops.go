package postgres

import (
	"context"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

func (r *shopRepository) SaveCredentials(ctx context.Context, creds model.ShopCredentials) error {
	const query = `INSERT INTO shop_credentials (shop, access_token, scopes, installed_at)
                   VALUES ($1, $2, $3, NOW())
                   ON CONFLICT (shop) DO UPDATE
                   SET access_token = EXCLUDED.access_token,
                       scopes = EXCLUDED.scopes,
                       installed_at = EXCLUDED.installed_at`
	_, err := r.storage.pool.Exec(ctx, query, creds.Shop, creds.AccessToken, creds.Scopes)
	return err
}

func (r *shopRepository) Credentials(ctx context.Context, shop string) (*model.ShopCredentials, error) {
	const query = `SELECT shop, access_token, scopes, installed_at FROM shop_credentials WHERE shop=$1`
	var c model.ShopCredentials
	err := r.storage.pool.QueryRow(ctx, query, shop).Scan(&c.Shop, &c.AccessToken, &c.Scopes, &c.InstalledAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *shopRepository) LatestCredentials(ctx context.Context) (*model.ShopCredentials, error) {
	const query = `SELECT shop, access_token, scopes, installed_at FROM shop_credentials
                   ORDER BY installed_at DESC LIMIT 1`
	var c model.ShopCredentials
	err := r.storage.pool.QueryRow(ctx, query).Scan(&c.Shop, &c.AccessToken, &c.Scopes, &c.InstalledAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}
