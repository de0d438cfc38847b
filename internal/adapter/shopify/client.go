package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

var (
	// ErrUnauthorized is returned when the access token is rejected.
	ErrUnauthorized = errors.New("shopify rejected access token")
	// ErrOrderNotFound is returned when the shop has no such order.
	ErrOrderNotFound = errors.New("shopify order not found")
)

const defaultRetryAfter = 2 * time.Second

// TooManyRequestsError represents rate limiting signal from the Admin API.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Webhook is a registered webhook subscription.
type Webhook struct {
	ID      int64  `json:"id,omitempty"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format,omitempty"`
}

// Client exposes the Admin API operations the portal needs.
type Client interface {
	ListOrders(ctx context.Context, creds model.ShopCredentials, limit int) ([]json.RawMessage, error)
	GetOrder(ctx context.Context, creds model.ShopCredentials, id string) (json.RawMessage, error)
	CreateFulfillment(ctx context.Context, creds model.ShopCredentials, orderID, trackingNumber, trackingURL string) error
	ListWebhooks(ctx context.Context, creds model.ShopCredentials) ([]Webhook, error)
	CreateWebhook(ctx context.Context, creds model.ShopCredentials, hook Webhook) error
}

// HTTPClient implements Client over the REST Admin API.
type HTTPClient struct {
	apiVersion string
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an Admin API client. An empty baseURL targets
// https://{shop}; otherwise it must be absolute and replaces the shop host.
func NewHTTPClient(apiVersion, baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	if apiVersion == "" {
		return nil, fmt.Errorf("shopify api version must be set")
	}
	c := &HTTPClient{
		apiVersion: apiVersion,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse shopify url: %w", err)
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("shopify url must be absolute")
		}
		c.baseURL = parsed
	}
	return c, nil
}

func (c *HTTPClient) endpoint(shop, resource string, query url.Values) string {
	u := url.URL{Scheme: "https", Host: shop}
	if c.baseURL != nil {
		u = *c.baseURL
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/admin/api/" + c.apiVersion + "/" + resource
	u.RawQuery = query.Encode()
	return u.String()
}

// ListOrders returns the most recent orders of any status as raw JSON.
func (c *HTTPClient) ListOrders(ctx context.Context, creds model.ShopCredentials, limit int) ([]json.RawMessage, error) {
	query := url.Values{"status": {"any"}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := c.do(ctx, creds, http.MethodGet, c.endpoint(creds.Shop, "orders.json", query), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetOrder returns one order as raw JSON.
func (c *HTTPClient) GetOrder(ctx context.Context, creds model.ShopCredentials, id string) (json.RawMessage, error) {
	var out struct {
		Order json.RawMessage `json:"order"`
	}
	if err := c.do(ctx, creds, http.MethodGet, c.endpoint(creds.Shop, "orders/"+url.PathEscape(id)+".json", nil), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Order) == 0 || string(out.Order) == "null" {
		return nil, ErrOrderNotFound
	}
	return out.Order, nil
}

// CreateFulfillment fulfills every line item of the order with tracking data.
func (c *HTTPClient) CreateFulfillment(ctx context.Context, creds model.ShopCredentials, orderID, trackingNumber, trackingURL string) error {
	raw, err := c.GetOrder(ctx, creds, orderID)
	if err != nil {
		return err
	}

	var order struct {
		ID        json.Number `json:"id"`
		LineItems []struct {
			ID       json.Number `json:"id"`
			Quantity int         `json:"quantity"`
		} `json:"line_items"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&order); err != nil {
		return fmt.Errorf("decode shopify order: %w", err)
	}
	if len(order.LineItems) == 0 {
		return fmt.Errorf("shopify order %s has no line items to fulfill", orderID)
	}

	type fulfillmentLine struct {
		ID       json.Number `json:"id"`
		Quantity int         `json:"quantity"`
	}
	lines := make([]fulfillmentLine, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		qty := li.Quantity
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, fulfillmentLine{ID: li.ID, Quantity: qty})
	}

	body := map[string]any{
		"fulfillment": map[string]any{
			"order_id":        order.ID,
			"line_items":      lines,
			"tracking_number": trackingNumber,
			"tracking_urls":   nonEmpty(trackingURL),
		},
	}
	return c.do(ctx, creds, http.MethodPost, c.endpoint(creds.Shop, "fulfillments.json", nil), body, nil)
}

// ListWebhooks returns the shop's webhook subscriptions.
func (c *HTTPClient) ListWebhooks(ctx context.Context, creds model.ShopCredentials) ([]Webhook, error) {
	var out struct {
		Webhooks []Webhook `json:"webhooks"`
	}
	query := url.Values{"limit": {"250"}}
	if err := c.do(ctx, creds, http.MethodGet, c.endpoint(creds.Shop, "webhooks.json", query), nil, &out); err != nil {
		return nil, err
	}
	return out.Webhooks, nil
}

// CreateWebhook subscribes address to topic.
func (c *HTTPClient) CreateWebhook(ctx context.Context, creds model.ShopCredentials, hook Webhook) error {
	if hook.Format == "" {
		hook.Format = "json"
	}
	body := map[string]any{"webhook": hook}
	return c.do(ctx, creds, http.MethodPost, c.endpoint(creds.Shop, "webhooks.json", nil), body, nil)
}

func (c *HTTPClient) do(ctx context.Context, creds model.ShopCredentials, method, endpoint string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode shopify response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrOrderNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("shopify request failed",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("shopify error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds >= 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return defaultRetryAfter
}

func nonEmpty(values ...string) []string {
	out := []string{}
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
