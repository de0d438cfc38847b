package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/adapter/events"
	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/domain/repository"
	"github.com/polkiloo/floristportal/internal/ingest"
	"github.com/polkiloo/floristportal/internal/metrics"
	"github.com/polkiloo/floristportal/internal/pkg/ordernum"
)

// IngestSource names the channel an order arrived through.
type IngestSource string

const (
	SourceWebhook IngestSource = "webhook"
	SourceSync    IngestSource = "sync"
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
	maxCancelReason  = 500
)

// IngestResult describes the outcome of one ingestion.
type IngestResult struct {
	Order    *model.Order
	Created  bool
	Assigned bool
}

// OrderPatch carries editable order fields. Nil fields are left untouched.
type OrderPatch struct {
	RecipientName *string
	Address1      *string
	PostalCode    *string
	City          *string
	Phone         *string
	DeliveryDate  *string
	Message       *string
}

// ListQuery is the raw listing request as it arrives from the API.
type ListQuery struct {
	Status         model.OrderStatus
	PostalCode     string
	PartnerID      *int64
	Unassigned     bool
	DeliveryPreset string
	DeliveryDate   string
	DeliveryFrom   string
	DeliveryTo     string
	ReceivedPreset string
	ReceivedFrom   string
	ReceivedTo     string
	Limit          int
}

// ManualOrderInput is an order typed in by an admin or a partner.
type ManualOrderInput struct {
	RecipientName string
	Phone         string
	Email         string
	Address1      string
	Address2      string
	PostalCode    string
	City          string
	Country       string
	DeliveryDate  string
	Message       string
	LineItems     []model.LineItem
	TotalPrice    string
	Currency      string
	PartnerID     *int64
}

// OrderDeps lists OrderUseCase collaborators.
type OrderDeps struct {
	fx.In

	Orders     repository.OrderRepository
	Users      repository.UserRepository
	Normalizer *ingest.Normalizer
	Publisher  events.Publisher
	Numbers    ordernum.Generator
	Metrics    *metrics.Registry
	Shops      *ShopUseCase
	Client     shopify.Client
	Logger     *slog.Logger
}

// OrderUseCase implements ingestion and the order workflow.
type OrderUseCase struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	normalizer *ingest.Normalizer
	publisher  events.Publisher
	numbers    ordernum.Generator
	metrics    *metrics.Registry
	shops      *ShopUseCase
	client     shopify.Client
	logger     *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(d OrderDeps) *OrderUseCase {
	return &OrderUseCase{
		orders:     d.Orders,
		users:      d.Users,
		normalizer: d.Normalizer,
		publisher:  d.Publisher,
		numbers:    d.Numbers,
		metrics:    d.Metrics,
		shops:      d.Shops,
		client:     d.Client,
		logger:     d.Logger,
	}
}

func (u *OrderUseCase) now() time.Time {
	return u.normalizer.Delivery().Now().UTC()
}

// Ingest normalizes a raw platform order and upserts it. Re-ingesting the same
// source order refreshes it in place. A new order with a resolved zone is
// assigned to the first covering partner.
func (u *OrderUseCase) Ingest(ctx context.Context, source IngestSource, topic, shop string, data []byte) (*IngestResult, error) {
	res, err := u.ingest(ctx, topic, shop, data)
	result := metrics.ResultFailed
	if err == nil {
		result = metrics.ResultUpdated
		if res.Created {
			result = metrics.ResultCreated
		}
	}
	u.metrics.OrdersIngested.WithLabelValues(string(source), result).Inc()
	return res, err
}

func (u *OrderUseCase) ingest(ctx context.Context, topic, shop string, data []byte) (*IngestResult, error) {
	order, _, err := u.normalizer.NormalizeRaw(data, shop)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidPayload, err)
	}
	if order.SourceOrderID == "" {
		return nil, fmt.Errorf("%w: missing order id", domainErrors.ErrInvalidPayload)
	}

	now := u.now()
	order.ReceivedAt = now
	order.UpdatedAt = now
	if topic == shopify.TopicOrdersCancelled && order.Status != model.OrderStatusCancelled {
		order.Status = model.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancelledByRole = model.RoleSystem
	}
	if order.Zone == "" {
		u.metrics.OrdersUnzoned.Inc()
	}
	if order.DeliveryOption == "" {
		u.metrics.DeliveryUnresolved.Inc()
	}

	previous, err := u.orders.FindBySource(ctx, order.SourcePlatform, order.SourceOrderID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, fmt.Errorf("find order: %w", err)
	}

	stored, created, err := u.orders.Upsert(ctx, &order)
	if err != nil {
		return nil, fmt.Errorf("upsert order: %w", err)
	}
	res := &IngestResult{Order: stored, Created: created}

	if previous != nil && previous.Status != stored.Status {
		eventType := model.OrderEventStatusChanged
		if stored.Status == model.OrderStatusCancelled {
			eventType = model.OrderEventCancelled
		}
		u.publish(ctx, eventType, stored, model.SystemActor)
	}

	if stored.PartnerID == nil && stored.Zone != "" && stored.Status == model.OrderStatusNew {
		partner, err := u.autoAssign(ctx, stored)
		if err != nil {
			u.logger.Error("auto assign partner",
				slog.Int64("order_id", stored.ID),
				slog.String("error", err.Error()),
			)
		} else if partner != nil {
			res.Assigned = true
			u.publishWithPartner(ctx, model.OrderEventAssigned, stored, partner, model.SystemActor)
		}
	}

	u.logger.Info("order ingested",
		slog.String("source_order_id", stored.SourceOrderID),
		slog.Int64("order_id", stored.ID),
		slog.Bool("created", created),
		slog.Bool("assigned", res.Assigned),
		slog.String("zone", stored.Zone),
	)
	return res, nil
}

func (u *OrderUseCase) autoAssign(ctx context.Context, order *model.Order) (*model.User, error) {
	partners, err := u.users.ListByRole(ctx, model.RolePartner)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	partner := ingest.AssignPartner(order, partners)
	if partner == nil {
		return nil, nil
	}
	now := u.now()
	order.PartnerID = &partner.ID
	order.AssignedAt = &now
	order.Status = model.OrderStatusAssigned
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}
	u.metrics.PartnerAssignments.WithLabelValues(metrics.AssignmentAuto).Inc()
	return partner, nil
}

// List returns orders matching q. Partners only ever see their own orders.
func (u *OrderUseCase) List(ctx context.Context, actor model.Actor, q ListQuery) ([]model.Order, error) {
	return u.list(ctx, actor, q, maxListLimit)
}

func (u *OrderUseCase) list(ctx context.Context, actor model.Actor, q ListQuery, maxLimit int) ([]model.Order, error) {
	filter, err := u.buildFilter(q, maxLimit)
	if err != nil {
		return nil, err
	}
	if actor.IsPartner() {
		id := actor.UserID
		filter.PartnerID = &id
		filter.Unassigned = false
	} else if !actor.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	return u.orders.List(ctx, filter)
}

func (u *OrderUseCase) buildFilter(q ListQuery, maxLimit int) (model.OrderFilter, error) {
	filter := model.OrderFilter{
		PostalCode: strings.TrimSpace(q.PostalCode),
		PartnerID:  q.PartnerID,
		Unassigned: q.Unassigned,
		Limit:      q.Limit,
	}
	if q.Status != "" {
		if !q.Status.Valid() {
			return filter, domainErrors.ErrInvalidStatus
		}
		filter.Status = q.Status
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxLimit:
		filter.Limit = maxLimit
	}

	var err error
	filter.DeliveryFrom, filter.DeliveryTo, err = u.deliveryRange(q)
	if err != nil {
		return filter, err
	}
	filter.ReceivedFrom, filter.ReceivedTo, err = u.receivedRange(q)
	if err != nil {
		return filter, err
	}
	return filter, nil
}

// deliveryRange prefers an explicit day, then from/to, then a preset.
func (u *OrderUseCase) deliveryRange(q ListQuery) (*time.Time, *time.Time, error) {
	if q.DeliveryDate != "" {
		start, end, err := u.dayBounds(q.DeliveryDate)
		if err != nil {
			return nil, nil, err
		}
		return &start, &end, nil
	}
	if q.DeliveryFrom != "" || q.DeliveryTo != "" {
		return u.dateSpan(q.DeliveryFrom, q.DeliveryTo)
	}

	delivery := u.normalizer.Delivery()
	now := delivery.Now()
	switch strings.ToLower(q.DeliveryPreset) {
	case "":
		return nil, nil, nil
	case "today":
		start, end := delivery.CivilDay(now)
		return &start, &end, nil
	case "tomorrow":
		start, end := delivery.CivilDay(now)
		start, end = start.AddDate(0, 0, 1), end.AddDate(0, 0, 1)
		return &start, &end, nil
	case "date":
		return nil, nil, fmt.Errorf("%w: delivery date is required", domainErrors.ErrInvalidInput)
	default:
		return nil, nil, fmt.Errorf("%w: unknown delivery preset %q", domainErrors.ErrInvalidInput, q.DeliveryPreset)
	}
}

// receivedRange prefers from/to over a preset. A week runs Monday to Sunday.
func (u *OrderUseCase) receivedRange(q ListQuery) (*time.Time, *time.Time, error) {
	if q.ReceivedFrom != "" || q.ReceivedTo != "" {
		return u.dateSpan(q.ReceivedFrom, q.ReceivedTo)
	}

	delivery := u.normalizer.Delivery()
	now := delivery.Now()
	switch strings.ToLower(q.ReceivedPreset) {
	case "":
		return nil, nil, nil
	case "today":
		start, end := delivery.CivilDay(now)
		return &start, &end, nil
	case "last24h":
		start := now.Add(-24 * time.Hour)
		return &start, nil, nil
	case "week":
		start, _ := delivery.CivilDay(now)
		offset := (int(start.Weekday()) + 6) % 7
		start = start.AddDate(0, 0, -offset)
		end := start.AddDate(0, 0, 7)
		return &start, &end, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown received preset %q", domainErrors.ErrInvalidInput, q.ReceivedPreset)
	}
}

func (u *OrderUseCase) dateSpan(from, to string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if from != "" {
		s, _, err := u.dayBounds(from)
		if err != nil {
			return nil, nil, err
		}
		start = &s
	}
	if to != "" {
		_, e, err := u.dayBounds(to)
		if err != nil {
			return nil, nil, err
		}
		end = &e
	}
	return start, end, nil
}

// dayBounds parses YYYY-MM-DD as a civil day in the delivery timezone.
func (u *OrderUseCase) dayBounds(value string) (time.Time, time.Time, error) {
	loc := u.normalizer.Delivery().Location()
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date %q", domainErrors.ErrInvalidInput, value)
	}
	return day, day.AddDate(0, 0, 1), nil
}

// Get returns the order if actor may read it.
func (u *OrderUseCase) Get(ctx context.Context, actor model.Actor, id int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func authorize(actor model.Actor, order *model.Order) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsPartner() && order.PartnerID != nil && *order.PartnerID == actor.UserID:
		return nil
	default:
		return domainErrors.ErrForbidden
	}
}

// Edit applies patch. Changing the postal code recomputes the zone.
func (u *OrderUseCase) Edit(ctx context.Context, actor model.Actor, id int64, patch OrderPatch) (*model.Order, error) {
	order, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, domainErrors.ErrOrderCancelled
	}

	var changed []string
	set := func(field string, dst *string, value *string) {
		if value == nil {
			return
		}
		v := strings.TrimSpace(*value)
		if v != *dst {
			*dst = v
			changed = append(changed, field)
		}
	}
	set("recipientName", &order.Customer.Name, patch.RecipientName)
	set("address1", &order.ShippingAddress.Address1, patch.Address1)
	set("city", &order.ShippingAddress.City, patch.City)
	set("phone", &order.Customer.Phone, patch.Phone)
	set("message", &order.Customer.Message, patch.Message)

	before := order.ShippingAddress.PostalCode
	set("postalCode", &order.ShippingAddress.PostalCode, patch.PostalCode)
	if order.ShippingAddress.PostalCode != before {
		order.Zone, _ = u.normalizer.Zones().Match(order.ShippingAddress.PostalCode)
	}

	if patch.DeliveryDate != nil {
		d, ok := u.normalizer.Delivery().ExtractDate(*patch.DeliveryDate)
		if !ok {
			return nil, fmt.Errorf("%w: delivery date %q", domainErrors.ErrInvalidInput, *patch.DeliveryDate)
		}
		if order.DeliveryDate == nil || !order.DeliveryDate.Equal(*d.Date) || order.DeliveryOption != model.DeliveryOptionDate {
			order.DeliveryDate = d.Date
			order.DeliveryOption = model.DeliveryOptionDate
			changed = append(changed, "deliveryDate")
		}
	}

	if len(changed) == 0 {
		return order, nil
	}
	u.touch(order, actor, changed...)
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	return order, nil
}

func (u *OrderUseCase) touch(order *model.Order, actor model.Actor, fields ...string) {
	order.UpdatedAt = u.now()
	order.UpdatedByRole = actor.Role
	order.UpdatedByEmail = actor.Email
	order.UpdateCount++
	order.LastUpdatedFields = fields
}

// SetStatus moves the order to status. Cancelled orders stay cancelled.
func (u *OrderUseCase) SetStatus(ctx context.Context, actor model.Actor, id int64, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, domainErrors.ErrInvalidStatus
	}
	if status == model.OrderStatusCancelled {
		return u.Cancel(ctx, actor, id, "")
	}
	order, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, domainErrors.ErrOrderCancelled
	}
	if order.Status == status {
		return order, nil
	}

	order.Status = status
	u.touch(order, actor, "status")
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	u.publish(ctx, model.OrderEventStatusChanged, order, actor)
	return order, nil
}

// Cancel marks the order cancelled once. Cancelling again is a no-op.
func (u *OrderUseCase) Cancel(ctx context.Context, actor model.Actor, id int64, reason string) (*model.Order, error) {
	order, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusCancelled {
		return order, nil
	}

	now := u.now()
	order.Status = model.OrderStatusCancelled
	order.CancelledAt = &now
	order.CancelledByRole = actor.Role
	order.CancelledByEmail = actor.Email
	order.CancelReason = truncate(strings.TrimSpace(reason), maxCancelReason)
	u.touch(order, actor, "status", "cancelReason")
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	u.publish(ctx, model.OrderEventCancelled, order, actor)
	return order, nil
}

// Assign sets or clears the partner of an order. Admin only.
func (u *OrderUseCase) Assign(ctx context.Context, actor model.Actor, id int64, partnerID *int64) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, domainErrors.ErrForbidden
	}
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderStatusCancelled {
		return nil, domainErrors.ErrOrderCancelled
	}

	if partnerID == nil {
		if order.PartnerID == nil {
			return order, nil
		}
		order.PartnerID = nil
		order.AssignedAt = nil
		if order.Status == model.OrderStatusAssigned {
			order.Status = model.OrderStatusNew
		}
		u.touch(order, actor, "partnerId")
		if err := u.orders.Save(ctx, order); err != nil {
			return nil, fmt.Errorf("save order: %w", err)
		}
		return order, nil
	}

	partner, err := u.partner(ctx, *partnerID)
	if err != nil {
		return nil, err
	}
	now := u.now()
	order.PartnerID = &partner.ID
	order.AssignedAt = &now
	if order.Status == model.OrderStatusNew {
		order.Status = model.OrderStatusAssigned
	}
	u.touch(order, actor, "partnerId")
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	u.metrics.PartnerAssignments.WithLabelValues(metrics.AssignmentManual).Inc()
	u.publishWithPartner(ctx, model.OrderEventAssigned, order, partner, actor)
	return order, nil
}

func (u *OrderUseCase) partner(ctx context.Context, id int64) (*model.User, error) {
	partner, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: partner %d", domainErrors.ErrInvalidInput, id)
		}
		return nil, err
	}
	if partner.Role != model.RolePartner {
		return nil, fmt.Errorf("%w: user %d is not a partner", domainErrors.ErrInvalidInput, id)
	}
	return partner, nil
}

// SetTracking stores tracking data. With push, Shopify orders are fulfilled
// upstream first and nothing is stored when that fails.
func (u *OrderUseCase) SetTracking(ctx context.Context, actor model.Actor, id int64, number, trackingURL string, push bool) (*model.Order, error) {
	order, err := u.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	number, trackingURL = strings.TrimSpace(number), strings.TrimSpace(trackingURL)
	if number == "" && trackingURL == "" {
		return nil, fmt.Errorf("%w: tracking number or url is required", domainErrors.ErrInvalidInput)
	}

	if push && order.SourceOrderID != "" && order.SourcePlatform == model.SourcePlatformShopify {
		creds, err := u.shops.Credentials(ctx)
		if err != nil {
			return nil, err
		}
		if err := u.client.CreateFulfillment(ctx, creds, order.SourceOrderID, number, trackingURL); err != nil {
			u.logger.Error("push fulfillment",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrUpstream, err)
		}
	}

	var changed []string
	if number != "" && number != order.TrackingNumber {
		order.TrackingNumber = number
		changed = append(changed, "trackingNumber")
	}
	if trackingURL != "" && trackingURL != order.TrackingURL {
		order.TrackingURL = trackingURL
		changed = append(changed, "trackingUrl")
	}
	if len(changed) == 0 {
		return order, nil
	}
	u.touch(order, actor, changed...)
	if err := u.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	return order, nil
}

// CreateManual stores an order typed in through the portal. A partner owns
// the orders they create; an admin picks a partner or lets the zone decide.
func (u *OrderUseCase) CreateManual(ctx context.Context, actor model.Actor, in ManualOrderInput) (*model.Order, error) {
	if !actor.IsAdmin() && !actor.IsPartner() {
		return nil, domainErrors.ErrForbidden
	}
	in.RecipientName = strings.TrimSpace(in.RecipientName)
	in.Address1 = strings.TrimSpace(in.Address1)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	if in.RecipientName == "" || in.Address1 == "" || in.PostalCode == "" {
		return nil, fmt.Errorf("%w: recipient name, address and postal code are required", domainErrors.ErrInvalidInput)
	}

	now := u.now()
	order := &model.Order{
		OrderNumber:    u.numbers.Next(),
		SourcePlatform: model.SourcePlatformManual,
		ReceivedAt:     now,
		OrderDate:      &now,
		Customer: model.Customer{
			Name:    in.RecipientName,
			Phone:   strings.TrimSpace(in.Phone),
			Email:   strings.TrimSpace(in.Email),
			Message: strings.TrimSpace(in.Message),
		},
		ShippingAddress: model.Address{
			Address1:   in.Address1,
			Address2:   strings.TrimSpace(in.Address2),
			PostalCode: in.PostalCode,
			City:       strings.TrimSpace(in.City),
			Country:    strings.TrimSpace(in.Country),
		},
		LineItems:      normalizeLineItems(in.LineItems),
		TotalPrice:     strings.TrimSpace(in.TotalPrice),
		Currency:       strings.TrimSpace(in.Currency),
		Status:         model.OrderStatusNew,
		CreatedByRole:  actor.Role,
		CreatedByEmail: actor.Email,
		UpdatedAt:      now,
	}
	order.Zone, _ = u.normalizer.Zones().Match(order.ShippingAddress.PostalCode)

	if in.DeliveryDate != "" {
		d, ok := u.normalizer.Delivery().ExtractDate(in.DeliveryDate)
		if !ok {
			return nil, fmt.Errorf("%w: delivery date %q", domainErrors.ErrInvalidInput, in.DeliveryDate)
		}
		order.DeliveryDate = d.Date
		order.DeliveryOption = d.Option
	}

	var (
		partner *model.User
		mode    string
	)
	switch {
	case actor.IsPartner():
		p, err := u.users.GetByID(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("load partner: %w", err)
		}
		partner, mode = p, metrics.AssignmentManual
	case in.PartnerID != nil:
		p, err := u.partner(ctx, *in.PartnerID)
		if err != nil {
			return nil, err
		}
		partner, mode = p, metrics.AssignmentManual
	default:
		partners, err := u.users.ListByRole(ctx, model.RolePartner)
		if err != nil {
			return nil, fmt.Errorf("list partners: %w", err)
		}
		partner, mode = ingest.AssignPartner(order, partners), metrics.AssignmentAuto
	}
	if partner != nil {
		order.PartnerID = &partner.ID
		order.AssignedAt = &now
		order.Status = model.OrderStatusAssigned
	}

	stored, err := u.orders.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if partner != nil {
		u.metrics.PartnerAssignments.WithLabelValues(mode).Inc()
		u.publishWithPartner(ctx, model.OrderEventAssigned, stored, partner, actor)
	}
	return stored, nil
}

func normalizeLineItems(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, li := range items {
		li.Name = strings.TrimSpace(li.Name)
		li.SKU = strings.TrimSpace(li.SKU)
		if li.Name == "" && li.SKU == "" {
			continue
		}
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		out = append(out, li)
	}
	return out
}

func (u *OrderUseCase) publish(ctx context.Context, eventType model.OrderEventType, order *model.Order, actor model.Actor) {
	var partner *model.User
	if order.PartnerID != nil {
		p, err := u.users.GetByID(ctx, *order.PartnerID)
		if err == nil {
			partner = p
		}
	}
	u.publishWithPartner(ctx, eventType, order, partner, actor)
}

// publishWithPartner never fails the caller; delivery errors are logged.
func (u *OrderUseCase) publishWithPartner(ctx context.Context, eventType model.OrderEventType, order *model.Order, partner *model.User, actor model.Actor) {
	event := model.OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		OrderNumber:  order.DisplayNumber(),
		Status:       order.Status,
		PartnerID:    order.PartnerID,
		Zone:         order.Zone,
		DeliveryDate: order.DeliveryDate,
		Recipient:    order.Customer,
		Address:      order.ShippingAddress,
		AddOns:       order.AddOnsSummary,
		ActorRole:    actor.Role,
		ActorEmail:   actor.Email,
		OccurredAt:   u.now(),
	}
	if partner != nil {
		event.PartnerName = partner.Name
		event.PartnerEmail = partner.Email
	}
	if err := u.publisher.Publish(ctx, event); err != nil {
		u.logger.Error("publish order event",
			slog.String("type", string(eventType)),
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
