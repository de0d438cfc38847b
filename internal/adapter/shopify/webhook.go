package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook request headers.
const (
	HeaderHmac       = "X-Shopify-Hmac-Sha256"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShop       = "X-Shopify-Shop-Domain"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
	HeaderEventID    = "X-Shopify-Event-Id"
	HeaderAPIVersion = "X-Shopify-API-Version"
)

// Webhook topics handled by the portal.
const (
	TopicOrdersCreate    = "orders/create"
	TopicOrdersUpdated   = "orders/updated"
	TopicOrdersCancelled = "orders/cancelled"
	TopicOrdersPaid      = "orders/paid"
)

// OrderTopics lists the subscriptions created on install.
var OrderTopics = []string{TopicOrdersCreate, TopicOrdersUpdated, TopicOrdersCancelled}

// VerifyWebhook checks the base64 HMAC-SHA256 signature of a webhook body.
// An empty secret never verifies.
func VerifyWebhook(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(body, secret)), []byte(signature))
}

// SignWebhook returns the signature Shopify would send for body.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
