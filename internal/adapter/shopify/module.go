package shopify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Module exposes the Shopify Admin API client and OAuth helper to fx graph.
var Module = fx.Provide(newClient, newOAuth)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.ShopifyAPIVersion, "", p.Logger)
}

func newOAuth(cfg *config.Config) (*OAuth, error) {
	return NewOAuth(OAuthConfig{
		APIKey:    cfg.ShopifyAPIKey,
		APISecret: cfg.ShopifyAPISecret,
		Scopes:    cfg.ShopifyScopes,
		AppURL:    cfg.ShopifyAppURL,
	}, "")
}
