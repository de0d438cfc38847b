package handlers

import (
	"context"
	"io"
	"net/url"
	"time"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
	"github.com/polkiloo/floristportal/internal/usecase"
	"github.com/polkiloo/floristportal/internal/worker"
)

// facadeStub implements PortalFacade. Nil functions answer with defaults.
type facadeStub struct {
	LoginFn           func(ctx context.Context, email, password string, remember bool) (*usecase.Session, error)
	MeFn              func(ctx context.Context, userID int64) (*model.User, error)
	ListOrdersFn      func(ctx context.Context, actor model.Actor, q usecase.ListQuery) ([]model.Order, error)
	OrderFn           func(ctx context.Context, actor model.Actor, id int64) (*model.Order, error)
	CreateOrderFn     func(ctx context.Context, actor model.Actor, in usecase.ManualOrderInput) (*model.Order, error)
	EditOrderFn       func(ctx context.Context, actor model.Actor, id int64, patch usecase.OrderPatch) (*model.Order, error)
	SetOrderStatusFn  func(ctx context.Context, actor model.Actor, id int64, status model.OrderStatus) (*model.Order, error)
	CancelOrderFn     func(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error)
	AssignOrderFn     func(ctx context.Context, actor model.Actor, id int64, partnerID *int64) (*model.Order, error)
	SetTrackingFn     func(ctx context.Context, actor model.Actor, id int64, number, trackingURL string, push bool) (*model.Order, error)
	PartnersFn        func(ctx context.Context) ([]model.User, error)
	CreatePartnerFn   func(ctx context.Context, in usecase.PartnerInput) (*model.User, error)
	UpdatePartnerFn   func(ctx context.Context, id int64, in usecase.PartnerInput) (*model.User, error)
	DeletePartnerFn   func(ctx context.Context, id int64) error
	ReportSummaryFn   func(ctx context.Context, actor model.Actor, q usecase.ListQuery) (*usecase.Report, error)
	ExportOrdersFn    func(ctx context.Context, actor model.Actor, q usecase.ListQuery, w io.Writer) error
	ReceiveWebhookFn  func(ctx context.Context, d usecase.WebhookDelivery) (bool, error)
	BeginInstallFn    func(shop string) (string, error)
	CompleteInstallFn func(ctx context.Context, query url.Values) (*model.ShopCredentials, error)
}

func (f facadeStub) Login(ctx context.Context, email, password string, remember bool) (*usecase.Session, error) {
	if f.LoginFn != nil {
		return f.LoginFn(ctx, email, password, remember)
	}
	return &usecase.Session{User: &model.User{ID: 1, Role: model.RoleAdmin}, Token: "token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f facadeStub) ParseToken(string) (pkgAuth.Claims, error) {
	return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
}

func (f facadeStub) Me(ctx context.Context, userID int64) (*model.User, error) {
	if f.MeFn != nil {
		return f.MeFn(ctx, userID)
	}
	return &model.User{ID: userID, Role: model.RoleAdmin}, nil
}

func (f facadeStub) ListOrders(ctx context.Context, actor model.Actor, q usecase.ListQuery) ([]model.Order, error) {
	if f.ListOrdersFn != nil {
		return f.ListOrdersFn(ctx, actor, q)
	}
	return nil, nil
}

func (f facadeStub) Order(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	if f.OrderFn != nil {
		return f.OrderFn(ctx, actor, id)
	}
	return &model.Order{ID: id}, nil
}

func (f facadeStub) CreateOrder(ctx context.Context, actor model.Actor, in usecase.ManualOrderInput) (*model.Order, error) {
	if f.CreateOrderFn != nil {
		return f.CreateOrderFn(ctx, actor, in)
	}
	return &model.Order{ID: 1}, nil
}

func (f facadeStub) EditOrder(ctx context.Context, actor model.Actor, id int64, patch usecase.OrderPatch) (*model.Order, error) {
	if f.EditOrderFn != nil {
		return f.EditOrderFn(ctx, actor, id, patch)
	}
	return &model.Order{ID: id}, nil
}

func (f facadeStub) SetOrderStatus(ctx context.Context, actor model.Actor, id int64, status model.OrderStatus) (*model.Order, error) {
	if f.SetOrderStatusFn != nil {
		return f.SetOrderStatusFn(ctx, actor, id, status)
	}
	return &model.Order{ID: id, Status: status}, nil
}

func (f facadeStub) CancelOrder(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error) {
	if f.CancelOrderFn != nil {
		return f.CancelOrderFn(ctx, actor, id, reason)
	}
	return &model.Order{ID: id, Status: model.OrderStatusCancelled, CancelReason: reason}, nil
}

func (f facadeStub) AssignOrder(ctx context.Context, actor model.Actor, id int64, partnerID *int64) (*model.Order, error) {
	if f.AssignOrderFn != nil {
		return f.AssignOrderFn(ctx, actor, id, partnerID)
	}
	return &model.Order{ID: id, PartnerID: partnerID}, nil
}

func (f facadeStub) SetTracking(ctx context.Context, actor model.Actor, id int64, number, trackingURL string, push bool) (*model.Order, error) {
	if f.SetTrackingFn != nil {
		return f.SetTrackingFn(ctx, actor, id, number, trackingURL, push)
	}
	return &model.Order{ID: id, TrackingNumber: number, TrackingURL: trackingURL}, nil
}

func (f facadeStub) Partners(ctx context.Context) ([]model.User, error) {
	if f.PartnersFn != nil {
		return f.PartnersFn(ctx)
	}
	return nil, nil
}

func (f facadeStub) CreatePartner(ctx context.Context, in usecase.PartnerInput) (*model.User, error) {
	if f.CreatePartnerFn != nil {
		return f.CreatePartnerFn(ctx, in)
	}
	return &model.User{ID: 1, Name: in.Name, Email: in.Email, Role: model.RolePartner, ZoneRanges: in.ZoneRanges}, nil
}

func (f facadeStub) UpdatePartner(ctx context.Context, id int64, in usecase.PartnerInput) (*model.User, error) {
	if f.UpdatePartnerFn != nil {
		return f.UpdatePartnerFn(ctx, id, in)
	}
	return &model.User{ID: id, Name: in.Name, Role: model.RolePartner}, nil
}

func (f facadeStub) DeletePartner(ctx context.Context, id int64) error {
	if f.DeletePartnerFn != nil {
		return f.DeletePartnerFn(ctx, id)
	}
	return nil
}

func (f facadeStub) ReportSummary(ctx context.Context, actor model.Actor, q usecase.ListQuery) (*usecase.Report, error) {
	if f.ReportSummaryFn != nil {
		return f.ReportSummaryFn(ctx, actor, q)
	}
	return &usecase.Report{Summary: usecase.Summarize(nil)}, nil
}

func (f facadeStub) ExportOrders(ctx context.Context, actor model.Actor, q usecase.ListQuery, w io.Writer) error {
	if f.ExportOrdersFn != nil {
		return f.ExportOrdersFn(ctx, actor, q, w)
	}
	return nil
}

func (f facadeStub) ReceiveWebhook(ctx context.Context, d usecase.WebhookDelivery) (bool, error) {
	if f.ReceiveWebhookFn != nil {
		return f.ReceiveWebhookFn(ctx, d)
	}
	return true, nil
}

func (f facadeStub) BeginInstall(shop string) (string, error) {
	if f.BeginInstallFn != nil {
		return f.BeginInstallFn(shop)
	}
	return "https://" + shop + "/admin/oauth/authorize", nil
}

func (f facadeStub) CompleteInstall(ctx context.Context, query url.Values) (*model.ShopCredentials, error) {
	if f.CompleteInstallFn != nil {
		return f.CompleteInstallFn(ctx, query)
	}
	if query.Get("shop") == "" {
		return nil, domainErrors.ErrInvalidSignature
	}
	return &model.ShopCredentials{Shop: query.Get("shop")}, nil
}

type syncStub struct {
	result worker.SyncResult
	err    error
}

func (s syncStub) RunOnce(context.Context) (worker.SyncResult, error) {
	return s.result, s.err
}
