package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	"github.com/polkiloo/floristportal/internal/config"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/domain/repository"
)

// WebhookPath is where Shopify delivers order webhooks.
const WebhookPath = "/api/webhooks/shopify"

const installStateTTL = 10 * time.Minute

// ShopSettings is the static shop configuration.
type ShopSettings struct {
	Shop        string
	AccessToken string
	AppURL      string
}

// ShopUseCase manages the connection to the Shopify store.
type ShopUseCase struct {
	shops    repository.ShopRepository
	oauth    *shopify.OAuth
	client   shopify.Client
	settings ShopSettings
	logger   *slog.Logger

	mu     sync.Mutex
	states map[string]pendingInstall
	now    func() time.Time
}

type pendingInstall struct {
	shop    string
	expires time.Time
}

// NewShopUseCase constructs ShopUseCase from configuration.
func NewShopUseCase(shops repository.ShopRepository, oauth *shopify.OAuth, client shopify.Client, cfg *config.Config, logger *slog.Logger) *ShopUseCase {
	return newShopUseCase(shops, oauth, client, ShopSettings{
		Shop:        cfg.ShopifyShop,
		AccessToken: cfg.ShopifyAccessToken,
		AppURL:      cfg.ShopifyAppURL,
	}, logger)
}

func newShopUseCase(shops repository.ShopRepository, oauth *shopify.OAuth, client shopify.Client, settings ShopSettings, logger *slog.Logger) *ShopUseCase {
	if shop, err := shopify.NormalizeShop(settings.Shop); err == nil {
		settings.Shop = shop
	}
	return &ShopUseCase{
		shops:    shops,
		oauth:    oauth,
		client:   client,
		settings: settings,
		logger:   logger,
		states:   make(map[string]pendingInstall),
		now:      time.Now,
	}
}

// BeginInstall returns the consent URL for shop and the state it carries.
func (u *ShopUseCase) BeginInstall(shop string) (string, string, error) {
	if shop == "" {
		shop = u.settings.Shop
	}
	shop, err := shopify.NormalizeShop(shop)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state := hex.EncodeToString(buf)

	redirect, err := u.oauth.AuthorizeURL(shop, state)
	if err != nil {
		return "", "", err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	now := u.now()
	for k, p := range u.states {
		if now.After(p.expires) {
			delete(u.states, k)
		}
	}
	u.states[state] = pendingInstall{shop: shop, expires: now.Add(installStateTTL)}
	return redirect, state, nil
}

func (u *ShopUseCase) consumeState(state, shop string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.states[state]
	if !ok {
		return false
	}
	delete(u.states, state)
	return p.shop == shop && !u.now().After(p.expires)
}

// CompleteInstall validates the OAuth callback, stores the access token and
// registers the order webhooks.
func (u *ShopUseCase) CompleteInstall(ctx context.Context, query url.Values) (*model.ShopCredentials, error) {
	if !u.oauth.VerifyCallback(query) {
		return nil, domainErrors.ErrInvalidSignature
	}
	shop, err := shopify.NormalizeShop(query.Get("shop"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidInput, err)
	}
	if !u.consumeState(query.Get("state"), shop) {
		return nil, fmt.Errorf("%w: unknown install state", domainErrors.ErrInvalidSignature)
	}
	code := query.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", domainErrors.ErrInvalidInput)
	}

	token, scope, err := u.oauth.ExchangeCode(ctx, shop, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstream, err)
	}
	creds := model.ShopCredentials{
		Shop:        shop,
		AccessToken: token,
		Scopes:      scope,
		InstalledAt: u.now().UTC(),
	}
	if err := u.shops.SaveCredentials(ctx, creds); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}
	u.logger.Info("shop installed", slog.String("shop", shop), slog.String("scopes", scope))

	if err := u.EnsureWebhooks(ctx, creds); err != nil {
		u.logger.Error("register webhooks", slog.String("shop", shop), slog.String("error", err.Error()))
	}
	return &creds, nil
}

// Credentials returns the token to call the Admin API with. Stored
// credentials win over the static token from the environment.
func (u *ShopUseCase) Credentials(ctx context.Context) (model.ShopCredentials, error) {
	var (
		stored *model.ShopCredentials
		err    error
	)
	if u.settings.Shop != "" {
		stored, err = u.shops.Credentials(ctx, u.settings.Shop)
	} else {
		stored, err = u.shops.LatestCredentials(ctx)
	}
	switch {
	case err == nil && stored.AccessToken != "":
		return *stored, nil
	case err != nil && !errors.Is(err, domainErrors.ErrNotFound):
		return model.ShopCredentials{}, fmt.Errorf("load credentials: %w", err)
	}

	if u.settings.Shop != "" && u.settings.AccessToken != "" {
		return model.ShopCredentials{Shop: u.settings.Shop, AccessToken: u.settings.AccessToken}, nil
	}
	return model.ShopCredentials{}, domainErrors.ErrShopNotConnected
}

// EnsureWebhooks subscribes the order topics that are not registered yet.
func (u *ShopUseCase) EnsureWebhooks(ctx context.Context, creds model.ShopCredentials) error {
	if u.settings.AppURL == "" {
		return nil
	}
	address := strings.TrimRight(u.settings.AppURL, "/") + WebhookPath

	existing, err := u.client.ListWebhooks(ctx, creds)
	if err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}
	registered := make(map[string]bool, len(existing))
	for _, hook := range existing {
		if hook.Address == address {
			registered[hook.Topic] = true
		}
	}

	for _, topic := range shopify.OrderTopics {
		if registered[topic] {
			continue
		}
		if err := u.client.CreateWebhook(ctx, creds, shopify.Webhook{Topic: topic, Address: address}); err != nil {
			return fmt.Errorf("create webhook %s: %w", topic, err)
		}
		u.logger.Info("webhook registered", slog.String("topic", topic), slog.String("address", address))
	}
	return nil
}
