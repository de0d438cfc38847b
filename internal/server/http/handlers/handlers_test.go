package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
	"github.com/polkiloo/floristportal/internal/server/http/dto"
	"github.com/polkiloo/floristportal/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/floristportal/internal/test"
	"github.com/polkiloo/floristportal/internal/usecase"
	"github.com/polkiloo/floristportal/internal/worker"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterValidators(); err != nil {
		panic(err)
	}
}

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	admin      = &model.Actor{UserID: 1, Role: model.RoleAdmin, Email: "admin@example.com"}
	partner    = &model.Actor{UserID: 7, Role: model.RolePartner, Email: "rosa@example.com"}
)

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, actor *model.Actor, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorContextKey, *actor)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestCurrentActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentActor(c); got.Role != model.RoleSystem || got.UserID != 0 {
		t.Fatalf("expected system actor when not set, got %+v", got)
	}

	c.Set(middleware.ActorContextKey, *partner)
	if got := CurrentActor(c); got.UserID != 7 || got.Role != model.RolePartner {
		t.Fatalf("unexpected actor %+v", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainErrors.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("edit: %w", domainErrors.ErrInvalidStatus), http.StatusBadRequest},
		{domainErrors.ErrInvalidZoneRange, http.StatusBadRequest},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{domainErrors.ErrInvalidSignature, http.StatusUnauthorized},
		{pkgAuth.ErrInvalidToken, http.StatusUnauthorized},
		{domainErrors.ErrForbidden, http.StatusForbidden},
		{domainErrors.ErrNotFound, http.StatusNotFound},
		{domainErrors.ErrAlreadyExists, http.StatusConflict},
		{domainErrors.ErrOrderCancelled, http.StatusConflict},
		{domainErrors.ErrShopNotConnected, http.StatusConflict},
		{worker.ErrSyncInProgress, http.StatusConflict},
		{fmt.Errorf("list: %w", shopify.TooManyRequestsError{}), http.StatusTooManyRequests},
		{domainErrors.ErrUpstream, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/", "/", func(c *gin.Context) {
		writeError(c, testLogger, errors.New("pq: connection refused"))
	}, nil, nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "pq:") {
		t.Fatalf("internal error leaked: %s", resp.Body.String())
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(facadeStub{LoginFn: func(_ context.Context, email, password string, remember bool) (*usecase.Session, error) {
		if email != "admin@example.com" || password != "secret1" || !remember {
			t.Fatalf("unexpected credentials passed to facade: %q %q %v", email, password, remember)
		}
		return &usecase.Session{
			User:  &model.User{ID: 1, Email: email, Role: model.RoleAdmin, PasswordHash: "hash"},
			Token: "session-token",
		}, nil
	}}, testLogger)

	body := mustJSON(t, dto.LoginRequest{Email: "admin@example.com", Password: "secret1", Remember: true})
	resp := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if strings.Contains(resp.Body.String(), "hash") {
		t.Fatalf("password hash leaked: %s", resp.Body.String())
	}
	var session dto.SessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.Token != "session-token" || session.User.Role != model.RoleAdmin {
		t.Fatalf("unexpected session %+v", session)
	}

	result := resp.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	found := false
	for _, cookie := range result.Cookies() {
		if cookie.Name == middleware.AuthCookieName && cookie.Value == "session-token" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected auth cookie named florist_token")
	}
}

func TestAuthHandlerLoginPassesCredentialsThrough(t *testing.T) {
	email := testhelpers.RandomEmail()
	password := testhelpers.RandomString(16)
	handler := NewAuthHandler(facadeStub{LoginFn: func(_ context.Context, gotEmail, gotPassword string, remember bool) (*usecase.Session, error) {
		if gotEmail != email || gotPassword != password || remember {
			t.Fatalf("unexpected credentials passed to facade: %q %q %v", gotEmail, gotPassword, remember)
		}
		return &usecase.Session{User: &model.User{ID: 2, Email: email, Role: model.RolePartner}, Token: "t"}, nil
	}}, testLogger)

	body := mustJSON(t, dto.LoginRequest{Email: email, Password: password})
	resp := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade facadeStub
		body   []byte
		status int
	}{
		{
			name:   "bad json",
			body:   []byte("{"),
			status: http.StatusBadRequest,
		},
		{
			name:   "missing password",
			body:   []byte(`{"email":"a@example.com"}`),
			status: http.StatusBadRequest,
		},
		{
			name: "invalid credentials",
			facade: facadeStub{LoginFn: func(context.Context, string, string, bool) (*usecase.Session, error) {
				return nil, domainErrors.ErrInvalidCredentials
			}},
			body:   []byte(`{"email":"a@example.com","password":"wrong"}`),
			status: http.StatusUnauthorized,
		},
		{
			name: "internal error",
			facade: facadeStub{LoginFn: func(context.Context, string, string, bool) (*usecase.Session, error) {
				return nil, errors.New("db down")
			}},
			body:   []byte(`{"email":"a@example.com","password":"secret1"}`),
			status: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(tc.facade, testLogger).Login, nil, tc.body, nil)
			if resp.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogoutAndMe(t *testing.T) {
	handler := NewAuthHandler(facadeStub{MeFn: func(_ context.Context, id int64) (*model.User, error) {
		if id != partner.UserID {
			return nil, domainErrors.ErrNotFound
		}
		return &model.User{ID: id, Name: "Rosa", Role: model.RolePartner}, nil
	}}, testLogger)

	resp := performRequest(t, http.MethodPost, "/logout", "/logout", handler.Logout, partner, nil, nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Set-Cookie"), middleware.AuthCookieName+"=;") {
		t.Fatalf("expected cookie to be cleared, got %q", resp.Header().Get("Set-Cookie"))
	}

	resp = performRequest(t, http.MethodGet, "/me", "/me", handler.Me, partner, nil, nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"name":"Rosa"`) {
		t.Fatalf("unexpected me response %d %s", resp.Code, resp.Body.String())
	}
	resp = performRequest(t, http.MethodGet, "/me", "/me", handler.Me, admin, nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestOrderHandlerListMapsQuery(t *testing.T) {
	var got usecase.ListQuery
	var gotActor model.Actor
	handler := NewOrderHandler(facadeStub{ListOrdersFn: func(_ context.Context, actor model.Actor, q usecase.ListQuery) ([]model.Order, error) {
		got, gotActor = q, actor
		return []model.Order{{ID: 3, SourceOrderName: "#1001", Status: model.OrderStatusNew}}, nil
	}}, syncStub{}, testLogger)

	resp := performRequest(t, http.MethodGet, "/orders", "/orders?status=new&postalCode=2200&partnerId=7&delivery=tomorrow&received=week&limit=50", handler.List, admin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.Status != model.OrderStatusNew || got.PostalCode != "2200" || got.PartnerID == nil || *got.PartnerID != 7 {
		t.Fatalf("unexpected query %+v", got)
	}
	if got.DeliveryPreset != "tomorrow" || got.ReceivedPreset != "week" || got.Limit != 50 {
		t.Fatalf("unexpected query %+v", got)
	}
	if gotActor.UserID != admin.UserID {
		t.Fatalf("actor not passed through: %+v", gotActor)
	}

	var orders []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderNumber != "#1001" {
		t.Fatalf("unexpected orders %+v", orders)
	}

	resp = performRequest(t, http.MethodGet, "/orders", "/orders?limit=0", handler.List, admin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("zero limit means default, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/orders", "/orders?limit=abc", handler.List, admin, nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", resp.Code)
	}
}

func TestOrderHandlerListEmpty(t *testing.T) {
	handler := NewOrderHandler(facadeStub{}, syncStub{}, testLogger)
	resp := performRequest(t, http.MethodGet, "/orders/my", "/orders/my", handler.Mine, partner, nil, nil)
	if resp.Code != http.StatusOK || strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %d %s", resp.Code, resp.Body.String())
	}
}

func TestOrderHandlerGet(t *testing.T) {
	handler := NewOrderHandler(facadeStub{OrderFn: func(_ context.Context, actor model.Actor, id int64) (*model.Order, error) {
		if actor.Role == model.RolePartner {
			return nil, domainErrors.ErrForbidden
		}
		if id == 404 {
			return nil, domainErrors.ErrNotFound
		}
		return &model.Order{ID: id}, nil
	}}, syncStub{}, testLogger)

	tests := []struct {
		target string
		actor  *model.Actor
		status int
	}{
		{"/orders/5", admin, http.StatusOK},
		{"/orders/5", partner, http.StatusForbidden},
		{"/orders/404", admin, http.StatusNotFound},
		{"/orders/abc", admin, http.StatusBadRequest},
		{"/orders/-1", admin, http.StatusBadRequest},
	}
	for _, tc := range tests {
		resp := performRequest(t, http.MethodGet, "/orders/:id", tc.target, handler.Get, tc.actor, nil, nil)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.target, tc.status, resp.Code)
		}
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	var got usecase.ManualOrderInput
	handler := NewOrderHandler(facadeStub{CreateOrderFn: func(_ context.Context, _ model.Actor, in usecase.ManualOrderInput) (*model.Order, error) {
		got = in
		return &model.Order{ID: 9, OrderNumber: "M-1"}, nil
	}}, syncStub{}, testLogger)

	body := mustJSON(t, dto.ManualOrderRequest{
		RecipientName: "Karen",
		Address1:      "Norrebrogade 1",
		PostalCode:    "2200",
		DeliveryDate:  "2025-03-14",
		LineItems:     []model.LineItem{{Name: "Rosebuket", Quantity: 1}},
	})
	resp := performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, admin, body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if got.RecipientName != "Karen" || got.PostalCode != "2200" || len(got.LineItems) != 1 {
		t.Fatalf("unexpected input %+v", got)
	}

	resp = performRequest(t, http.MethodPost, "/orders", "/orders", handler.Create, admin, []byte(`{"recipientName":"Karen"}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing address, got %d", resp.Code)
	}
}

func TestOrderHandlerEdit(t *testing.T) {
	var got usecase.OrderPatch
	handler := NewOrderHandler(facadeStub{EditOrderFn: func(_ context.Context, _ model.Actor, id int64, patch usecase.OrderPatch) (*model.Order, error) {
		got = patch
		if id == 2 {
			return nil, domainErrors.ErrOrderCancelled
		}
		return &model.Order{ID: id}, nil
	}}, syncStub{}, testLogger)

	resp := performRequest(t, http.MethodPatch, "/orders/:id", "/orders/1", handler.Edit, admin, []byte(`{"postalCode":"5000","city":"Odense"}`), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got.PostalCode == nil || *got.PostalCode != "5000" || got.City == nil || got.Phone != nil {
		t.Fatalf("absent fields must stay nil: %+v", got)
	}

	resp = performRequest(t, http.MethodPatch, "/orders/:id", "/orders/2", handler.Edit, admin, []byte(`{"city":"Odense"}`), nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for cancelled order, got %d", resp.Code)
	}
}

func TestOrderHandlerSetStatus(t *testing.T) {
	handler := NewOrderHandler(facadeStub{SetOrderStatusFn: func(_ context.Context, _ model.Actor, id int64, status model.OrderStatus) (*model.Order, error) {
		if !status.Valid() {
			return nil, domainErrors.ErrInvalidStatus
		}
		return &model.Order{ID: id, Status: status}, nil
	}}, syncStub{}, testLogger)

	resp := performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/1/status", handler.SetStatus, partner, []byte(`{"status":"ready"}`), nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"status":"ready"`) {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
	resp = performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/1/status", handler.SetStatus, partner, []byte(`{"status":"lost"}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPatch, "/orders/:id/status", "/orders/1/status", handler.SetStatus, partner, []byte(`{}`), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without status, got %d", resp.Code)
	}
}

func TestOrderHandlerCancel(t *testing.T) {
	var reasons []string
	handler := NewOrderHandler(facadeStub{CancelOrderFn: func(_ context.Context, _ model.Actor, id int64, reason string) (*model.Order, error) {
		reasons = append(reasons, reason)
		return &model.Order{ID: id, Status: model.OrderStatusCancelled}, nil
	}}, syncStub{}, testLogger)

	resp := performRequest(t, http.MethodPatch, "/orders/:id/cancel", "/orders/1/cancel", handler.Cancel, admin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("cancel without body should succeed, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodPatch, "/orders/:id/cancel", "/orders/1/cancel", handler.Cancel, admin, []byte(`{"reason":"customer called"}`), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(reasons) != 2 || reasons[0] != "" || reasons[1] != "customer called" {
		t.Fatalf("unexpected reasons %v", reasons)
	}
}

func TestOrderHandlerAssign(t *testing.T) {
	var got []*int64
	handler := NewOrderHandler(facadeStub{AssignOrderFn: func(_ context.Context, _ model.Actor, id int64, partnerID *int64) (*model.Order, error) {
		got = append(got, partnerID)
		return &model.Order{ID: id, PartnerID: partnerID}, nil
	}}, syncStub{}, testLogger)

	performRequest(t, http.MethodPatch, "/orders/:id/assign", "/orders/1/assign", handler.Assign, admin, []byte(`{"partnerId":7}`), nil)
	performRequest(t, http.MethodPatch, "/orders/:id/assign", "/orders/1/assign", handler.Assign, admin, []byte(`{"partnerId":null}`), nil)
	if len(got) != 2 || got[0] == nil || *got[0] != 7 || got[1] != nil {
		t.Fatalf("unexpected assignments %v", got)
	}
}

func TestOrderHandlerTrackingPushesOnPost(t *testing.T) {
	var pushes []bool
	handler := NewOrderHandler(facadeStub{SetTrackingFn: func(_ context.Context, _ model.Actor, id int64, number, trackingURL string, push bool) (*model.Order, error) {
		pushes = append(pushes, push)
		if push && number == "fail" {
			return nil, domainErrors.ErrUpstream
		}
		return &model.Order{ID: id, TrackingNumber: number}, nil
	}}, syncStub{}, testLogger)

	body := []byte(`{"trackingNumber":"GLS123","trackingUrl":"https://gls.dk/track/GLS123"}`)
	if resp := performRequest(t, http.MethodPatch, "/orders/:id/tracking", "/orders/1/tracking", handler.Tracking, admin, body, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp := performRequest(t, http.MethodPost, "/orders/:id/tracking", "/orders/1/tracking", handler.Tracking, admin, body, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(pushes) != 2 || pushes[0] || !pushes[1] {
		t.Fatalf("only POST should push, got %v", pushes)
	}

	if resp := performRequest(t, http.MethodPost, "/orders/:id/tracking", "/orders/1/tracking", handler.Tracking, admin, []byte(`{"trackingNumber":"fail"}`), nil); resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	if resp := performRequest(t, http.MethodPatch, "/orders/:id/tracking", "/orders/1/tracking", handler.Tracking, admin, []byte(`{"trackingUrl":"not a url"}`), nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid url, got %d", resp.Code)
	}
}

func TestOrderHandlerSync(t *testing.T) {
	handler := NewOrderHandler(facadeStub{}, syncStub{result: worker.SyncResult{Fetched: 3, Created: 2, Updated: 1}}, testLogger)
	resp := performRequest(t, http.MethodPost, "/orders/sync", "/orders/sync", handler.Sync, admin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var result worker.SyncResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Fetched != 3 || result.Created != 2 || result.Updated != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	busy := NewOrderHandler(facadeStub{}, syncStub{err: worker.ErrSyncInProgress}, testLogger)
	if resp := performRequest(t, http.MethodPost, "/orders/sync", "/orders/sync", busy.Sync, admin, nil, nil); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	offline := NewOrderHandler(facadeStub{}, syncStub{err: domainErrors.ErrShopNotConnected}, testLogger)
	if resp := performRequest(t, http.MethodPost, "/orders/sync", "/orders/sync", offline.Sync, admin, nil, nil); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestPartnerHandler(t *testing.T) {
	var created usecase.PartnerInput
	handler := NewPartnerHandler(facadeStub{
		PartnersFn: func(context.Context) ([]model.User, error) {
			return []model.User{{ID: 7, Name: "Rosa", Role: model.RolePartner, PasswordHash: "hash"}}, nil
		},
		CreatePartnerFn: func(_ context.Context, in usecase.PartnerInput) (*model.User, error) {
			created = in
			if in.Email == "taken@example.com" {
				return nil, domainErrors.ErrAlreadyExists
			}
			return &model.User{ID: 8, Name: in.Name, Role: model.RolePartner}, nil
		},
		DeletePartnerFn: func(_ context.Context, id int64) error {
			if id != 7 {
				return domainErrors.ErrNotFound
			}
			return nil
		},
	}, testLogger)

	resp := performRequest(t, http.MethodGet, "/partners", "/partners", handler.List, admin, nil, nil)
	if resp.Code != http.StatusOK || strings.Contains(resp.Body.String(), "hash") {
		t.Fatalf("unexpected list response %d %s", resp.Code, resp.Body.String())
	}

	body := mustJSON(t, dto.PartnerRequest{Name: "Lilje", Email: "lilje@example.com", Password: "secret1", ZoneRanges: []string{"5000-5999"}})
	resp = performRequest(t, http.MethodPost, "/partners", "/partners", handler.Create, admin, body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if created.Name != "Lilje" || len(created.ZoneRanges) != 1 {
		t.Fatalf("unexpected input %+v", created)
	}

	body = mustJSON(t, dto.PartnerRequest{Name: "X", Email: "taken@example.com", Password: "secret1"})
	if resp = performRequest(t, http.MethodPost, "/partners", "/partners", handler.Create, admin, body, nil); resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if resp = performRequest(t, http.MethodPost, "/partners", "/partners", handler.Create, admin, []byte(`{"email":"bad"}`), nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", resp.Code)
	}

	if resp = performRequest(t, http.MethodDelete, "/partners/:id", "/partners/7", handler.Delete, admin, nil, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp = performRequest(t, http.MethodDelete, "/partners/:id", "/partners/8", handler.Delete, admin, nil, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp = performRequest(t, http.MethodPut, "/partners/:id", "/partners/x", handler.Update, admin, []byte(`{}`), nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReportHandlerSummary(t *testing.T) {
	handler := NewReportHandler(facadeStub{ReportSummaryFn: func(_ context.Context, _ model.Actor, q usecase.ListQuery) (*usecase.Report, error) {
		if q.ReceivedPreset != "today" {
			t.Fatalf("expected received preset, got %+v", q)
		}
		return &usecase.Report{Summary: usecase.Summarize([]model.Order{{Status: model.OrderStatusNew, TotalPrice: "100", Currency: "DKK"}})}, nil
	}}, testLogger)

	resp := performRequest(t, http.MethodGet, "/summary", "/summary?received=today", handler.Summary, admin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var summary dto.SummaryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Total != 1 || summary.Unassigned != 1 || summary.Revenue["DKK"] != "100.00" {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestReportHandlerExportCSV(t *testing.T) {
	handler := NewReportHandler(facadeStub{ExportOrdersFn: func(_ context.Context, _ model.Actor, _ usecase.ListQuery, w io.Writer) error {
		_, err := io.WriteString(w, "OrderNumber\n#1001\n")
		return err
	}}, testLogger)

	resp := performRequest(t, http.MethodGet, "/orders.csv", "/orders.csv", handler.ExportCSV, admin, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "orders.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if resp.Body.String() != "OrderNumber\n#1001\n" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}

	failing := NewReportHandler(facadeStub{ExportOrdersFn: func(context.Context, model.Actor, usecase.ListQuery, io.Writer) error {
		return domainErrors.ErrInvalidInput
	}}, testLogger)
	if resp = performRequest(t, http.MethodGet, "/orders.csv", "/orders.csv", failing.ExportCSV, admin, nil, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestWebhookHandlerPassesHeaders(t *testing.T) {
	var got usecase.WebhookDelivery
	handler := NewWebhookHandler(facadeStub{ReceiveWebhookFn: func(_ context.Context, d usecase.WebhookDelivery) (bool, error) {
		got = d
		return d.ID != "dup", nil
	}}, testLogger)

	headers := map[string]string{
		shopify.HeaderWebhookID: "w-1",
		shopify.HeaderTopic:     shopify.TopicOrdersCreate,
		shopify.HeaderShop:      "blomster.myshopify.com",
		shopify.HeaderHmac:      "sig",
	}
	resp := performRequest(t, http.MethodPost, "/hook", "/hook", handler.Shopify, nil, []byte(`{"id":1}`), headers)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"accepted":true`) {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
	if got.ID != "w-1" || got.Topic != shopify.TopicOrdersCreate || got.Shop != "blomster.myshopify.com" || got.Signature != "sig" || string(got.Body) != `{"id":1}` {
		t.Fatalf("unexpected delivery %+v", got)
	}

	resp = performRequest(t, http.MethodPost, "/hook", "/hook", handler.Shopify, nil, []byte(`{}`), map[string]string{shopify.HeaderEventID: "dup"})
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"accepted":false`) {
		t.Fatalf("duplicates are acknowledged, got %d %s", resp.Code, resp.Body.String())
	}
	if got.ID != "dup" {
		t.Fatalf("event id should be used as fallback, got %q", got.ID)
	}
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	handler := NewWebhookHandler(facadeStub{ReceiveWebhookFn: func(context.Context, usecase.WebhookDelivery) (bool, error) {
		return false, domainErrors.ErrInvalidSignature
	}}, testLogger)
	resp := performRequest(t, http.MethodPost, "/hook", "/hook", handler.Shopify, nil, []byte(`{}`), nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestShopifyHandlerInstall(t *testing.T) {
	handler := NewShopifyHandler(facadeStub{BeginInstallFn: func(shop string) (string, error) {
		if shop == "" {
			return "", domainErrors.ErrInvalidInput
		}
		return "https://" + shop + ".myshopify.com/admin/oauth/authorize?state=s", nil
	}}, testLogger)

	resp := performRequest(t, http.MethodGet, "/install", "/install?shop=blomster", handler.Install, nil, nil, nil)
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); !strings.HasPrefix(loc, "https://blomster.myshopify.com/") {
		t.Fatalf("unexpected redirect %q", loc)
	}
	if resp = performRequest(t, http.MethodGet, "/install", "/install", handler.Install, nil, nil, nil); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestShopifyHandlerCallback(t *testing.T) {
	var got url.Values
	handler := NewShopifyHandler(facadeStub{CompleteInstallFn: func(_ context.Context, q url.Values) (*model.ShopCredentials, error) {
		got = q
		if q.Get("hmac") != "ok" {
			return nil, domainErrors.ErrInvalidSignature
		}
		return &model.ShopCredentials{Shop: q.Get("shop")}, nil
	}}, testLogger)

	resp := performRequest(t, http.MethodGet, "/callback", "/callback?shop=blomster.myshopify.com&code=c&hmac=ok", handler.Callback, nil, nil, nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "blomster.myshopify.com") {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
	if got.Get("code") != "c" {
		t.Fatalf("query not passed through: %v", got)
	}
	if resp = performRequest(t, http.MethodGet, "/callback", "/callback?shop=x&hmac=bad", handler.Callback, nil, nil, nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestHealth(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/healthz", "/healthz", Health, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

type probeFunc func(context.Context) error

func (f probeFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestReady(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	up := Ready(probeFunc(func(context.Context) error { return nil }), logger)
	if resp := performRequest(t, http.MethodGet, "/readyz", "/readyz", up, nil, nil, nil); resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "ready") {
		t.Fatalf("expected ready, got %d %s", resp.Code, resp.Body.String())
	}

	down := Ready(probeFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") }), logger)
	resp := performRequest(t, http.MethodGet, "/readyz", "/readyz", down, nil, nil, nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "refused") {
		t.Fatalf("probe errors must not leak: %s", resp.Body.String())
	}
	if !strings.Contains(logs.String(), "readiness check failed") {
		t.Fatalf("expected warning log, got %s", logs.String())
	}
}
