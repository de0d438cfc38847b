package usecase

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/ingest"
	"github.com/polkiloo/floristportal/internal/metrics"
	testhelpers "github.com/polkiloo/floristportal/internal/test"
)

var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

type orderFixture struct {
	uc        *OrderUseCase
	orders    *testhelpers.OrderRepositoryStub
	users     *testhelpers.UserRepositoryStub
	shops     *testhelpers.ShopRepositoryStub
	publisher *testhelpers.PublisherStub
	client    *testhelpers.ShopifyClientStub
	metrics   *metrics.Registry
}

type sequenceNumbers struct{ n int }

func (s *sequenceNumbers) Next() string {
	s.n++
	return fmt.Sprintf("M-%d", s.n)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testNormalizer(t *testing.T) *ingest.Normalizer {
	t.Helper()
	loc, err := time.LoadLocation(ingest.DefaultDeliveryTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	zones := ingest.NewZoneMatcher(ingest.ZoneTable{
		{Key: "1000-2999", Zone: "CPH"},
		{Key: "5000-5999", Zone: "FYN"},
	})
	delivery := ingest.NewDeliveryExtractor(loc, func() time.Time { return fixedNow })
	return ingest.NewNormalizer(zones, delivery, ingest.NewAddOnExtractor(nil, nil, nil))
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:    testhelpers.NewOrderRepositoryStub(),
		users:     testhelpers.NewUserRepositoryStub(),
		shops:     testhelpers.NewShopRepositoryStub(),
		publisher: &testhelpers.PublisherStub{},
		client:    &testhelpers.ShopifyClientStub{},
		metrics:   metrics.NewRegistry(),
	}
	f.users.Orders = f.orders
	shopUC := newShopUseCase(f.shops, nil, f.client, ShopSettings{
		Shop:        "flowers.myshopify.com",
		AccessToken: "env-token",
	}, discardLogger())
	f.uc = NewOrderUseCase(OrderDeps{
		Orders:     f.orders,
		Users:      f.users,
		Normalizer: testNormalizer(t),
		Publisher:  f.publisher,
		Numbers:    &sequenceNumbers{},
		Metrics:    f.metrics,
		Shops:      shopUC,
		Client:     f.client,
		Logger:     discardLogger(),
	})
	return f
}

func (f *orderFixture) addPartner(name, email string, ranges ...string) *model.User {
	return f.users.Add(model.User{Name: name, Email: email, Role: model.RolePartner, ZoneRanges: ranges})
}

var adminActor = model.Actor{UserID: 100, Role: model.RoleAdmin, Email: "admin@example.com"}

func partnerActor(u *model.User) model.Actor {
	return model.ActorFromUser(u)
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

// shopifyOrder renders a minimal Shopify order document.
func shopifyOrder(id int64, zip, deliveryDate string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": %d,
  "name": "#%d",
  "order_number": %d,
  "created_at": "2025-03-12T09:00:00+01:00",
  "currency": "DKK",
  "total_price": "499.00",
  "note_attributes": [{"name": "Leveringsdato", "value": %q}],
  "line_items": [{"sku": "BUK-ROSE", "title": "Rosebuket", "quantity": 1, "price": "499.00"}],
  "shipping_address": {"first_name": "Karen", "last_name": "Jensen", "address1": "Norrebrogade 1", "city": "Kobenhavn N", "zip": %q, "phone": "+4512345678"}
}`, id, id%10000, id%10000, deliveryDate, zip))
}
