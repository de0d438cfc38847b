package shopify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// CallbackPath is the OAuth redirect path registered with the app.
const CallbackPath = "/api/shopify/callback"

var (
	// ErrInvalidShop is returned for shop domains outside *.myshopify.com.
	ErrInvalidShop = errors.New("invalid shop domain")
	// ErrOAuthNotConfigured is returned when app credentials are missing.
	ErrOAuthNotConfigured = errors.New("shopify app credentials are not configured")
)

var shopDomainRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// NormalizeShop lowercases a shop domain and appends .myshopify.com to bare handles.
func NormalizeShop(shop string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(shop))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = strings.TrimRight(s, "/")
	if s == "" {
		return "", ErrInvalidShop
	}
	if !strings.HasSuffix(s, ".myshopify.com") {
		s += ".myshopify.com"
	}
	if !shopDomainRe.MatchString(s) {
		return "", ErrInvalidShop
	}
	return s, nil
}

// OAuthConfig carries the app credentials used by the install flow.
type OAuthConfig struct {
	APIKey    string
	APISecret string
	Scopes    string
	AppURL    string
}

// OAuth implements the authorization code grant for app installation.
type OAuth struct {
	cfg        OAuthConfig
	baseURL    *url.URL
	httpClient *http.Client
}

// NewOAuth creates an OAuth helper. baseURL follows the HTTPClient rules.
func NewOAuth(cfg OAuthConfig, baseURL string) (*OAuth, error) {
	o := &OAuth{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse shopify url: %w", err)
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("shopify url must be absolute")
		}
		o.baseURL = parsed
	}
	return o, nil
}

// Configured reports whether the install flow can run.
func (o *OAuth) Configured() bool {
	return o.cfg.APIKey != "" && o.cfg.APISecret != "" && o.cfg.AppURL != ""
}

// Scopes returns the requested access scopes without whitespace.
func (o *OAuth) Scopes() string {
	return strings.Join(strings.Fields(o.cfg.Scopes), "")
}

// AuthorizeURL builds the consent screen URL for shop.
func (o *OAuth) AuthorizeURL(shop, state string) (string, error) {
	if !o.Configured() {
		return "", ErrOAuthNotConfigured
	}
	shop, err := NormalizeShop(shop)
	if err != nil {
		return "", err
	}

	u := o.shopURL(shop, "/admin/oauth/authorize")
	u.RawQuery = url.Values{
		"client_id":    {o.cfg.APIKey},
		"scope":        {o.Scopes()},
		"redirect_uri": {strings.TrimRight(o.cfg.AppURL, "/") + CallbackPath},
		"state":        {state},
	}.Encode()
	return u.String(), nil
}

// VerifyCallback checks the hex HMAC Shopify appends to the callback query.
func (o *OAuth) VerifyCallback(query url.Values) bool {
	signature := query.Get("hmac")
	if o.cfg.APISecret == "" || signature == "" {
		return false
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(o.cfg.APISecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

// ExchangeCode trades an authorization code for an offline access token.
func (o *OAuth) ExchangeCode(ctx context.Context, shop, code string) (token, scope string, err error) {
	shop, err = NormalizeShop(shop)
	if err != nil {
		return "", "", err
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     o.cfg.APIKey,
		"client_secret": o.cfg.APISecret,
		"code":          code,
	})
	if err != nil {
		return "", "", err
	}

	endpoint := o.shopURL(shop, "/admin/oauth/access_token")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("exchange code: %s", resp.Status)
	}

	var out struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", "", fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", "", errors.New("no access token in response")
	}
	return out.AccessToken, out.Scope, nil
}

func (o *OAuth) shopURL(shop, path string) url.URL {
	u := url.URL{Scheme: "https", Host: shop}
	if o.baseURL != nil {
		u = *o.baseURL
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u
}
