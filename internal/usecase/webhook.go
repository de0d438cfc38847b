package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	"github.com/polkiloo/floristportal/internal/config"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/storage/inbox"
)

const replayBatch = 100

// WebhookDelivery is one signed webhook request.
type WebhookDelivery struct {
	ID        string
	Topic     string
	Shop      string
	Signature string
	Body      []byte
}

type webhookInbox interface {
	Claim(r inbox.Receipt, payload []byte) (bool, error)
	Complete(deliveryID string, procErr error) error
	Pending(limit int) ([]inbox.Receipt, error)
	Payload(deliveryID string) ([]byte, error)
}

type orderIngester interface {
	Ingest(ctx context.Context, source IngestSource, topic, shop string, data []byte) (*IngestResult, error)
}

// WebhookUseCase verifies, deduplicates and ingests Shopify webhooks.
type WebhookUseCase struct {
	inbox   webhookInbox
	orders  orderIngester
	secret  string
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewWebhookUseCase verifies with the webhook secret, or the app secret when
// no dedicated one is configured.
func NewWebhookUseCase(box *inbox.Inbox, orders *OrderUseCase, cfg *config.Config, reg *metrics.Registry, logger *slog.Logger) *WebhookUseCase {
	secret := cfg.ShopifyWebhookSecret
	if secret == "" {
		secret = cfg.ShopifyAPISecret
	}
	return newWebhookUseCase(box, orders, secret, reg, logger)
}

func newWebhookUseCase(box webhookInbox, orders orderIngester, secret string, reg *metrics.Registry, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{inbox: box, orders: orders, secret: secret, metrics: reg, logger: logger}
}

// Receive accepts a delivery. It returns false for a delivery id seen before.
// Once claimed, processing failures are recorded in the inbox and logged
// rather than returned so Shopify does not retry a stored delivery.
func (u *WebhookUseCase) Receive(ctx context.Context, d WebhookDelivery) (bool, error) {
	if !shopify.VerifyWebhook(d.Body, d.Signature, u.secret) {
		u.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookRejected).Inc()
		return false, domainErrors.ErrInvalidSignature
	}
	if d.ID == "" {
		sum := sha256.Sum256(d.Body)
		d.ID = "sha256:" + hex.EncodeToString(sum[:])
	}

	claimed, err := u.inbox.Claim(inbox.Receipt{DeliveryID: d.ID, Topic: d.Topic, Shop: d.Shop}, d.Body)
	if err != nil {
		u.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookFailed).Inc()
		return false, fmt.Errorf("claim delivery: %w", err)
	}
	if !claimed {
		u.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookDuplicate).Inc()
		u.logger.Info("duplicate webhook delivery", slog.String("delivery_id", d.ID), slog.String("topic", d.Topic))
		return false, nil
	}

	u.metrics.WebhookDeliveries.WithLabelValues(metrics.WebhookAccepted).Inc()
	u.process(ctx, d.ID, d.Topic, d.Shop, d.Body)
	return true, nil
}

// ReplayPending processes deliveries that were claimed but never completed,
// typically because the process stopped mid-request.
func (u *WebhookUseCase) ReplayPending(ctx context.Context) (int, error) {
	pending, err := u.inbox.Pending(replayBatch)
	if err != nil {
		return 0, fmt.Errorf("list pending deliveries: %w", err)
	}
	replayed := 0
	for _, r := range pending {
		if err := ctx.Err(); err != nil {
			return replayed, err
		}
		body, err := u.inbox.Payload(r.DeliveryID)
		if err != nil {
			u.logger.Error("load webhook payload", slog.String("delivery_id", r.DeliveryID), slog.String("error", err.Error()))
			continue
		}
		u.process(ctx, r.DeliveryID, r.Topic, r.Shop, body)
		replayed++
	}
	return replayed, nil
}

func (u *WebhookUseCase) process(ctx context.Context, id, topic, shop string, body []byte) {
	var procErr error
	if isOrderTopic(topic) {
		_, procErr = u.orders.Ingest(ctx, SourceWebhook, topic, shop, body)
	} else {
		u.logger.Debug("ignoring webhook topic", slog.String("topic", topic))
	}
	if procErr != nil {
		u.logger.Error("process webhook",
			slog.String("delivery_id", id),
			slog.String("topic", topic),
			slog.String("error", procErr.Error()),
		)
	}
	if err := u.inbox.Complete(id, procErr); err != nil {
		u.logger.Error("complete webhook delivery", slog.String("delivery_id", id), slog.String("error", err.Error()))
	}
}

func isOrderTopic(topic string) bool {
	switch topic {
	case shopify.TopicOrdersCreate, shopify.TopicOrdersUpdated, shopify.TopicOrdersCancelled, shopify.TopicOrdersPaid:
		return true
	default:
		return false
	}
}
