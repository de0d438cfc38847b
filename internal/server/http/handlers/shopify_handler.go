package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ShopifyHandler drives the app install handshake.
type ShopifyHandler struct {
	facade ShopFacade
	logger *slog.Logger
}

// NewShopifyHandler constructs ShopifyHandler.
func NewShopifyHandler(facade ShopFacade, logger *slog.Logger) *ShopifyHandler {
	return &ShopifyHandler{facade: facade, logger: logger}
}

// Install handles GET /api/shopify/install?shop=.
func (h *ShopifyHandler) Install(c *gin.Context) {
	redirect, err := h.facade.BeginInstall(c.Query("shop"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// Callback handles GET /api/shopify/callback.
func (h *ShopifyHandler) Callback(c *gin.Context) {
	creds, err := h.facade.CompleteInstall(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.logger.Info("shop connected", slog.String("shop", creds.Shop))
	c.JSON(http.StatusOK, gin.H{"shop": creds.Shop, "connected": true})
}
