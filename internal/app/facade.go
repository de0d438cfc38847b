package app

import (
	"context"
	"encoding/json"
	"io"
	"net/url"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
	"github.com/polkiloo/floristportal/internal/usecase"
)

// PortalFacade is the single entry point the HTTP layer and the sync worker
// use to reach the business services.
type PortalFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	partners *usecase.PartnerUseCase
	reports  *usecase.ReportUseCase
	shops    *usecase.ShopUseCase
	webhooks *usecase.WebhookUseCase
	client   shopify.Client
}

func NewPortalFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	partners *usecase.PartnerUseCase,
	reports *usecase.ReportUseCase,
	shops *usecase.ShopUseCase,
	webhooks *usecase.WebhookUseCase,
	client shopify.Client,
) *PortalFacade {
	return &PortalFacade{
		auth:     auth,
		orders:   orders,
		partners: partners,
		reports:  reports,
		shops:    shops,
		webhooks: webhooks,
		client:   client,
	}
}

func (f *PortalFacade) Login(ctx context.Context, email, password string, remember bool) (*usecase.Session, error) {
	return f.auth.Login(ctx, email, password, remember)
}

func (f *PortalFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *PortalFacade) Me(ctx context.Context, userID int64) (*model.User, error) {
	return f.auth.Me(ctx, userID)
}

func (f *PortalFacade) ListOrders(ctx context.Context, actor model.Actor, q usecase.ListQuery) ([]model.Order, error) {
	return f.orders.List(ctx, actor, q)
}

func (f *PortalFacade) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, actor, id)
}

func (f *PortalFacade) CreateOrder(ctx context.Context, actor model.Actor, in usecase.ManualOrderInput) (*model.Order, error) {
	return f.orders.CreateManual(ctx, actor, in)
}

func (f *PortalFacade) EditOrder(ctx context.Context, actor model.Actor, id int64, patch usecase.OrderPatch) (*model.Order, error) {
	return f.orders.Edit(ctx, actor, id, patch)
}

func (f *PortalFacade) SetOrderStatus(ctx context.Context, actor model.Actor, id int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.SetStatus(ctx, actor, id, status)
}

func (f *PortalFacade) CancelOrder(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error) {
	return f.orders.Cancel(ctx, actor, id, reason)
}

func (f *PortalFacade) AssignOrder(ctx context.Context, actor model.Actor, id int64, partnerID *int64) (*model.Order, error) {
	return f.orders.Assign(ctx, actor, id, partnerID)
}

func (f *PortalFacade) SetTracking(ctx context.Context, actor model.Actor, id int64, number, trackingURL string, push bool) (*model.Order, error) {
	return f.orders.SetTracking(ctx, actor, id, number, trackingURL, push)
}

func (f *PortalFacade) Partners(ctx context.Context) ([]model.User, error) {
	return f.partners.List(ctx)
}

func (f *PortalFacade) CreatePartner(ctx context.Context, in usecase.PartnerInput) (*model.User, error) {
	return f.partners.Create(ctx, in)
}

func (f *PortalFacade) UpdatePartner(ctx context.Context, id int64, in usecase.PartnerInput) (*model.User, error) {
	return f.partners.Update(ctx, id, in)
}

func (f *PortalFacade) DeletePartner(ctx context.Context, id int64) error {
	return f.partners.Delete(ctx, id)
}

func (f *PortalFacade) ReportSummary(ctx context.Context, actor model.Actor, q usecase.ListQuery) (*usecase.Report, error) {
	return f.reports.Summary(ctx, actor, q)
}

func (f *PortalFacade) ExportOrders(ctx context.Context, actor model.Actor, q usecase.ListQuery, w io.Writer) error {
	return f.reports.ExportCSV(ctx, actor, q, w)
}

func (f *PortalFacade) ReceiveWebhook(ctx context.Context, d usecase.WebhookDelivery) (bool, error) {
	return f.webhooks.Receive(ctx, d)
}

func (f *PortalFacade) ReplayWebhooks(ctx context.Context) (int, error) {
	return f.webhooks.ReplayPending(ctx)
}

func (f *PortalFacade) BeginInstall(shop string) (string, error) {
	redirect, _, err := f.shops.BeginInstall(shop)
	return redirect, err
}

func (f *PortalFacade) CompleteInstall(ctx context.Context, query url.Values) (*model.ShopCredentials, error) {
	return f.shops.CompleteInstall(ctx, query)
}

// RecentOrders fetches the newest orders of the connected shop.
func (f *PortalFacade) RecentOrders(ctx context.Context, limit int) (string, []json.RawMessage, error) {
	creds, err := f.shops.Credentials(ctx)
	if err != nil {
		return "", nil, err
	}
	orders, err := f.client.ListOrders(ctx, creds, limit)
	if err != nil {
		return creds.Shop, nil, err
	}
	return creds.Shop, orders, nil
}

func (f *PortalFacade) IngestOrder(ctx context.Context, shop string, raw json.RawMessage) (*usecase.IngestResult, error) {
	return f.orders.Ingest(ctx, usecase.SourceSync, shopify.TopicOrdersUpdated, shop, raw)
}

// BootstrapAdmin creates the first admin account on an empty database.
func (f *PortalFacade) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	return f.auth.BootstrapAdmin(ctx, email, password)
}
