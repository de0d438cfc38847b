package test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	"github.com/polkiloo/floristportal/internal/domain/model"
)

// PublisherStub records published order events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []model.OrderEvent
	Err    error
}

// Publish stores the event and returns the configured error.
func (p *PublisherStub) Publish(_ context.Context, event model.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

// Close is a no-op.
func (p *PublisherStub) Close() error { return nil }

// Types returns the recorded event types in order.
func (p *PublisherStub) Types() []model.OrderEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.OrderEventType, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Type)
	}
	return out
}

// FulfillmentCall captures a CreateFulfillment invocation.
type FulfillmentCall struct {
	Shop           string
	OrderID        string
	TrackingNumber string
	TrackingURL    string
}

// ShopifyClientStub implements shopify.Client with overridable behaviour.
type ShopifyClientStub struct {
	ListOrdersFn        func(context.Context, model.ShopCredentials, int) ([]json.RawMessage, error)
	GetOrderFn          func(context.Context, model.ShopCredentials, string) (json.RawMessage, error)
	CreateFulfillmentFn func(context.Context, model.ShopCredentials, string, string, string) error

	mu           sync.Mutex
	Webhooks     []shopify.Webhook
	Fulfillments []FulfillmentCall
	ListErr      error
}

// ListOrders delegates to override or returns no orders.
func (s *ShopifyClientStub) ListOrders(ctx context.Context, creds model.ShopCredentials, limit int) ([]json.RawMessage, error) {
	if s.ListOrdersFn != nil {
		return s.ListOrdersFn(ctx, creds, limit)
	}
	return nil, nil
}

// GetOrder delegates to override or reports not found.
func (s *ShopifyClientStub) GetOrder(ctx context.Context, creds model.ShopCredentials, id string) (json.RawMessage, error) {
	if s.GetOrderFn != nil {
		return s.GetOrderFn(ctx, creds, id)
	}
	return nil, shopify.ErrOrderNotFound
}

// CreateFulfillment records the call.
func (s *ShopifyClientStub) CreateFulfillment(ctx context.Context, creds model.ShopCredentials, orderID, trackingNumber, trackingURL string) error {
	s.mu.Lock()
	s.Fulfillments = append(s.Fulfillments, FulfillmentCall{
		Shop:           creds.Shop,
		OrderID:        orderID,
		TrackingNumber: trackingNumber,
		TrackingURL:    trackingURL,
	})
	s.mu.Unlock()
	if s.CreateFulfillmentFn != nil {
		return s.CreateFulfillmentFn(ctx, creds, orderID, trackingNumber, trackingURL)
	}
	return nil
}

// ListWebhooks returns registered webhooks.
func (s *ShopifyClientStub) ListWebhooks(context.Context, model.ShopCredentials) ([]shopify.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]shopify.Webhook(nil), s.Webhooks...), nil
}

// CreateWebhook registers hook.
func (s *ShopifyClientStub) CreateWebhook(_ context.Context, _ model.ShopCredentials, hook shopify.Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Webhooks = append(s.Webhooks, hook)
	return nil
}
