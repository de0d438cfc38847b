package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	"github.com/polkiloo/floristportal/internal/usecase"
)

const maxWebhookBody = 2 << 20

// WebhookHandler receives shop webhooks.
type WebhookHandler struct {
	facade WebhookFacade
	logger *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, logger: logger}
}

// Shopify handles POST /api/webhooks/shopify. The raw body is needed for
// signature verification, so it is read before any binding.
func (h *WebhookHandler) Shopify(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
		return
	}

	id := c.GetHeader(shopify.HeaderWebhookID)
	if id == "" {
		id = c.GetHeader(shopify.HeaderEventID)
	}

	accepted, err := h.facade.ReceiveWebhook(c.Request.Context(), usecase.WebhookDelivery{
		ID:        id,
		Topic:     c.GetHeader(shopify.HeaderTopic),
		Shop:      c.GetHeader(shopify.HeaderShop),
		Signature: c.GetHeader(shopify.HeaderHmac),
		Body:      body,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": accepted})
}
