package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/server/http/dto"
	"github.com/polkiloo/floristportal/internal/server/http/handlers"
	"github.com/polkiloo/floristportal/internal/server/http/middleware"
)

const (
	metricsPath    = "/metrics"
	maxRequestBody = 8 << 20
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.PortalFacade
	Sync    handlers.SyncRunner
	Probe   handlers.ReadinessProbe
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	// promhttp negotiates its own compression.
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{metricsPath})))

	authHandler := handlers.NewAuthHandler(p.Facade, p.Logger)
	orderHandler := handlers.NewOrderHandler(p.Facade, p.Sync, p.Logger)
	partnerHandler := handlers.NewPartnerHandler(p.Facade, p.Logger)
	reportHandler := handlers.NewReportHandler(p.Facade, p.Logger)
	webhookHandler := handlers.NewWebhookHandler(p.Facade, p.Logger)
	shopifyHandler := handlers.NewShopifyHandler(p.Facade, p.Logger)

	engine.GET("/healthz", handlers.Health)
	engine.GET("/readyz", handlers.Ready(p.Probe, p.Logger))
	engine.GET(metricsPath, gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")
	api.POST("/webhooks/shopify", webhookHandler.Shopify)
	api.GET("/shopify/install", shopifyHandler.Install)
	api.GET("/shopify/callback", shopifyHandler.Callback)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", middleware.AuthRequired(p.Facade), authHandler.Me)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	orders := authed.Group("/orders")
	orders.GET("", adminOnly, orderHandler.List)
	orders.GET("/my", middleware.RequireRole(model.RolePartner), orderHandler.Mine)
	orders.POST("", orderHandler.Create)
	orders.POST("/sync", adminOnly, orderHandler.Sync)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id", orderHandler.Edit)
	orders.PATCH("/:id/status", orderHandler.SetStatus)
	orders.PATCH("/:id/cancel", orderHandler.Cancel)
	orders.PATCH("/:id/assign", adminOnly, orderHandler.Assign)
	orders.PATCH("/:id/tracking", orderHandler.Tracking)
	orders.POST("/:id/tracking", orderHandler.Tracking)

	partners := authed.Group("/partners", adminOnly)
	partners.GET("", partnerHandler.List)
	partners.POST("", partnerHandler.Create)
	partners.PUT("/:id", partnerHandler.Update)
	partners.DELETE("/:id", partnerHandler.Delete)

	reports := authed.Group("/reports", adminOnly)
	reports.GET("/summary", reportHandler.Summary)
	reports.GET("/orders.csv", reportHandler.ExportCSV)

	return engine, nil
}
