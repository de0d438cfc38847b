package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
)

const orderColumns = `id, COALESCE(order_number, ''), source_platform, COALESCE(source_order_id, ''),
    source_order_number, source_order_name, shop, received_at, order_date, delivery_date,
    delivery_option, line_items, add_ons, add_ons_summary, customer, shipping_address, zone,
    partner_id, assigned_at, status, total_price, currency, tracking_number, tracking_url,
    created_by_role, created_by_email, updated_at, updated_by_role, updated_by_email,
    update_count, last_updated_fields, cancelled_at, cancelled_by_role, cancelled_by_email,
    cancel_reason, raw`

const orderInsertColumns = `order_number, source_platform, source_order_id, source_order_number,
    source_order_name, shop, received_at, order_date, delivery_date, delivery_option, line_items,
    add_ons, add_ons_summary, customer, shipping_address, zone, partner_id, assigned_at, status,
    total_price, currency, tracking_number, tracking_url, created_by_role, created_by_email,
    updated_at, updated_by_role, updated_by_email, cancelled_at, cancelled_by_role,
    cancelled_by_email, cancel_reason, raw`

const orderInsertValues = `NULLIF($1, ''), $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11,
    $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29,
    $30, $31, $32, $33`

// Extracted fields follow the latest payload. Workflow fields (partner,
// progressed status, audit) keep their stored values; contact fields are only
// refreshed while nobody has edited the order.
const orderUpsertSet = `source_order_number = EXCLUDED.source_order_number,
    source_order_name = EXCLUDED.source_order_name,
    shop = EXCLUDED.shop,
    order_date = EXCLUDED.order_date,
    delivery_date = CASE WHEN orders.update_count = 0 THEN EXCLUDED.delivery_date ELSE orders.delivery_date END,
    delivery_option = CASE WHEN orders.update_count = 0 THEN EXCLUDED.delivery_option ELSE orders.delivery_option END,
    line_items = EXCLUDED.line_items,
    add_ons = EXCLUDED.add_ons,
    add_ons_summary = EXCLUDED.add_ons_summary,
    customer = CASE WHEN orders.update_count = 0 THEN EXCLUDED.customer ELSE orders.customer END,
    shipping_address = CASE WHEN orders.update_count = 0 THEN EXCLUDED.shipping_address ELSE orders.shipping_address END,
    zone = CASE WHEN orders.update_count = 0 THEN EXCLUDED.zone ELSE orders.zone END,
    status = CASE WHEN EXCLUDED.status IN ('cancelled', 'fulfilled') AND orders.status <> 'cancelled'
        THEN EXCLUDED.status ELSE orders.status END,
    total_price = EXCLUDED.total_price,
    currency = EXCLUDED.currency,
    tracking_number = COALESCE(NULLIF(EXCLUDED.tracking_number, ''), orders.tracking_number),
    tracking_url = COALESCE(NULLIF(EXCLUDED.tracking_url, ''), orders.tracking_url),
    cancelled_at = COALESCE(orders.cancelled_at, EXCLUDED.cancelled_at),
    cancelled_by_role = CASE WHEN orders.cancelled_at IS NULL THEN EXCLUDED.cancelled_by_role ELSE orders.cancelled_by_role END,
    cancel_reason = CASE WHEN orders.cancelled_at IS NULL THEN EXCLUDED.cancel_reason ELSE orders.cancel_reason END,
    raw = EXCLUDED.raw`

type orderJSON struct {
	lineItems       []byte
	addOns          []byte
	customer        []byte
	shippingAddress []byte
}

func marshalOrderJSON(o *model.Order) (orderJSON, error) {
	var (
		out orderJSON
		err error
	)
	lineItems := o.LineItems
	if lineItems == nil {
		lineItems = []model.LineItem{}
	}
	addOns := o.AddOns
	if addOns == nil {
		addOns = []model.AddOn{}
	}
	if out.lineItems, err = json.Marshal(lineItems); err != nil {
		return out, fmt.Errorf("encode line items: %w", err)
	}
	if out.addOns, err = json.Marshal(addOns); err != nil {
		return out, fmt.Errorf("encode add-ons: %w", err)
	}
	if out.customer, err = json.Marshal(o.Customer); err != nil {
		return out, fmt.Errorf("encode customer: %w", err)
	}
	if out.shippingAddress, err = json.Marshal(o.ShippingAddress); err != nil {
		return out, fmt.Errorf("encode address: %w", err)
	}
	return out, nil
}

func rawArg(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func orderInsertArgs(o *model.Order) ([]any, error) {
	enc, err := marshalOrderJSON(o)
	if err != nil {
		return nil, err
	}
	receivedAt := o.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	updatedAt := o.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = receivedAt
	}
	return []any{
		o.OrderNumber, o.SourcePlatform, o.SourceOrderID, o.SourceOrderNumber,
		o.SourceOrderName, o.Shop, receivedAt, o.OrderDate, o.DeliveryDate, string(o.DeliveryOption), enc.lineItems,
		enc.addOns, o.AddOnsSummary, enc.customer, enc.shippingAddress, o.Zone, o.PartnerID, o.AssignedAt, string(o.Status),
		o.TotalPrice, o.Currency, o.TrackingNumber, o.TrackingURL, string(o.CreatedByRole), o.CreatedByEmail,
		updatedAt, string(o.UpdatedByRole), o.UpdatedByEmail, o.CancelledAt, string(o.CancelledByRole),
		o.CancelledByEmail, o.CancelReason, rawArg(o.Raw),
	}, nil
}

func scanOrder(row pgx.Row, extra ...any) (*model.Order, error) {
	var (
		o                                             model.Order
		lineItems, addOns, customer, address, rawJSON []byte
	)
	dest := []any{
		&o.ID, &o.OrderNumber, &o.SourcePlatform, &o.SourceOrderID,
		&o.SourceOrderNumber, &o.SourceOrderName, &o.Shop, &o.ReceivedAt, &o.OrderDate, &o.DeliveryDate,
		&o.DeliveryOption, &lineItems, &addOns, &o.AddOnsSummary, &customer, &address, &o.Zone,
		&o.PartnerID, &o.AssignedAt, &o.Status, &o.TotalPrice, &o.Currency, &o.TrackingNumber, &o.TrackingURL,
		&o.CreatedByRole, &o.CreatedByEmail, &o.UpdatedAt, &o.UpdatedByRole, &o.UpdatedByEmail,
		&o.UpdateCount, &o.LastUpdatedFields, &o.CancelledAt, &o.CancelledByRole, &o.CancelledByEmail,
		&o.CancelReason, &rawJSON,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if err := decodeJSON(lineItems, &o.LineItems); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	if err := decodeJSON(addOns, &o.AddOns); err != nil {
		return nil, fmt.Errorf("decode add-ons: %w", err)
	}
	if err := decodeJSON(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("decode customer: %w", err)
	}
	if err := decodeJSON(address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if len(rawJSON) > 0 {
		o.Raw = json.RawMessage(rawJSON)
	}
	if o.LineItems == nil {
		o.LineItems = []model.LineItem{}
	}
	if o.AddOns == nil {
		o.AddOns = []model.AddOn{}
	}
	return &o, nil
}

func decodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (r *orderRepository) Upsert(ctx context.Context, order *model.Order) (*model.Order, bool, error) {
	if order.SourceOrderID == "" {
		return nil, false, domainErrors.ErrInvalidPayload
	}
	args, err := orderInsertArgs(order)
	if err != nil {
		return nil, false, err
	}

	query := `INSERT INTO orders (` + orderInsertColumns + `) VALUES (` + orderInsertValues + `)
              ON CONFLICT (source_platform, source_order_id) DO UPDATE SET ` + orderUpsertSet + `
              RETURNING ` + orderColumns + `, (xmax = 0) AS inserted`

	var inserted bool
	stored, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...), &inserted)
	if err != nil {
		return nil, false, mapError(err)
	}
	return stored, inserted, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	args, err := orderInsertArgs(order)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO orders (` + orderInsertColumns + `) VALUES (` + orderInsertValues + `)
              RETURNING ` + orderColumns

	stored, err := scanOrder(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return stored, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return o, nil
}

func (r *orderRepository) FindBySource(ctx context.Context, platform, sourceID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE source_platform=$1 AND source_order_id=$2`
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, query, platform, sourceID))
	if err != nil {
		return nil, mapError(err)
	}
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query, args := buildListQuery(filter)
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func buildListQuery(filter model.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status=$%d", string(filter.Status))
	}
	if filter.PostalCode != "" {
		add("shipping_address->>'postalCode'=$%d", filter.PostalCode)
	}
	if filter.PartnerID != nil {
		add("partner_id=$%d", *filter.PartnerID)
	}
	if filter.Unassigned {
		conds = append(conds, "partner_id IS NULL")
	}
	if filter.DeliveryFrom != nil {
		add("delivery_date>=$%d", *filter.DeliveryFrom)
	}
	if filter.DeliveryTo != nil {
		add("delivery_date<$%d", *filter.DeliveryTo)
	}
	if filter.ReceivedFrom != nil {
		add("received_at>=$%d", *filter.ReceivedFrom)
	}
	if filter.ReceivedTo != nil {
		add("received_at<$%d", *filter.ReceivedTo)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + orderColumns + ` FROM orders`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY delivery_date ASC NULLS LAST, received_at DESC, id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	return sb.String(), args
}

func (r *orderRepository) Save(ctx context.Context, order *model.Order) error {
	enc, err := marshalOrderJSON(order)
	if err != nil {
		return err
	}
	lastUpdated := order.LastUpdatedFields
	if lastUpdated == nil {
		lastUpdated = []string{}
	}

	const query = `UPDATE orders SET customer=$1, shipping_address=$2, zone=$3, delivery_date=$4,
                   delivery_option=$5, partner_id=$6, assigned_at=$7, status=$8, tracking_number=$9,
                   tracking_url=$10, updated_at=$11, updated_by_role=$12, updated_by_email=$13,
                   update_count=$14, last_updated_fields=$15, cancelled_at=$16, cancelled_by_role=$17,
                   cancelled_by_email=$18, cancel_reason=$19
                   WHERE id=$20`
	tag, err := r.storage.pool.Exec(ctx, query,
		enc.customer, enc.shippingAddress, order.Zone, order.DeliveryDate,
		string(order.DeliveryOption), order.PartnerID, order.AssignedAt, string(order.Status), order.TrackingNumber,
		order.TrackingURL, order.UpdatedAt, string(order.UpdatedByRole), order.UpdatedByEmail,
		order.UpdateCount, lastUpdated, order.CancelledAt, string(order.CancelledByRole),
		order.CancelledByEmail, order.CancelReason,
		order.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
