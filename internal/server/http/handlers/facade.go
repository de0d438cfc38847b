package handlers

import (
	"context"
	"io"
	"net/url"

	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
	"github.com/polkiloo/floristportal/internal/usecase"
	"github.com/polkiloo/floristportal/internal/worker"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Login(ctx context.Context, email, password string, remember bool) (*usecase.Session, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	ListOrders(ctx context.Context, actor model.Actor, q usecase.ListQuery) ([]model.Order, error)
	Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	CreateOrder(ctx context.Context, actor model.Actor, in usecase.ManualOrderInput) (*model.Order, error)
	EditOrder(ctx context.Context, actor model.Actor, id int64, patch usecase.OrderPatch) (*model.Order, error)
	SetOrderStatus(ctx context.Context, actor model.Actor, id int64, status model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error)
	AssignOrder(ctx context.Context, actor model.Actor, id int64, partnerID *int64) (*model.Order, error)
	SetTracking(ctx context.Context, actor model.Actor, id int64, number, trackingURL string, push bool) (*model.Order, error)
}

// PartnerFacade manages partner accounts.
type PartnerFacade interface {
	Partners(ctx context.Context) ([]model.User, error)
	CreatePartner(ctx context.Context, in usecase.PartnerInput) (*model.User, error)
	UpdatePartner(ctx context.Context, id int64, in usecase.PartnerInput) (*model.User, error)
	DeletePartner(ctx context.Context, id int64) error
}

// ReportFacade provides admin reporting.
type ReportFacade interface {
	ReportSummary(ctx context.Context, actor model.Actor, q usecase.ListQuery) (*usecase.Report, error)
	ExportOrders(ctx context.Context, actor model.Actor, q usecase.ListQuery, w io.Writer) error
}

// WebhookFacade accepts shop webhooks.
type WebhookFacade interface {
	ReceiveWebhook(ctx context.Context, d usecase.WebhookDelivery) (bool, error)
}

// ShopFacade drives the app installation handshake.
type ShopFacade interface {
	BeginInstall(shop string) (string, error)
	CompleteInstall(ctx context.Context, query url.Values) (*model.ShopCredentials, error)
}

// SyncRunner triggers an immediate order sync.
type SyncRunner interface {
	RunOnce(ctx context.Context) (worker.SyncResult, error)
}

// PortalFacade aggregates the full set of operations used across handlers.
type PortalFacade interface {
	AuthFacade
	OrderFacade
	PartnerFacade
	ReportFacade
	WebhookFacade
	ShopFacade
}
