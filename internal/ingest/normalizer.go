package ingest

import (
	"encoding/json"
	"strings"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// Normalizer turns platform payloads into canonical orders. Webhook and
// polling ingestion both go through it so they produce identical records.
type Normalizer struct {
	zones    *ZoneMatcher
	delivery *DeliveryExtractor
	addOns   *AddOnExtractor
}

// NewNormalizer composes the extractors.
func NewNormalizer(zones *ZoneMatcher, delivery *DeliveryExtractor, addOns *AddOnExtractor) *Normalizer {
	return &Normalizer{zones: zones, delivery: delivery, addOns: addOns}
}

// Zones exposes the zone matcher used for manual edits.
func (n *Normalizer) Zones() *ZoneMatcher { return n.zones }

// Delivery exposes the delivery extractor used for manual edits and filters.
func (n *Normalizer) Delivery() *DeliveryExtractor { return n.delivery }

// Normalize maps p to a canonical order for shop. Workflow and audit fields
// other than the initial status are left for the caller.
func (n *Normalizer) Normalize(p *Payload, shop string) model.Order {
	if p == nil {
		p = &Payload{}
	}

	order := model.Order{
		SourcePlatform:    model.SourcePlatformShopify,
		SourceOrderID:     strings.TrimSpace(string(p.ID)),
		SourceOrderNumber: firstNonEmpty(string(p.OrderNumber), string(p.Number)),
		SourceOrderName:   p.Name,
		Shop:              shop,
		TotalPrice:        string(p.TotalPrice),
		Currency:          firstNonEmpty(p.Currency, p.PresentmentCurrency),
		Status:            initialStatus(p),
		CreatedByRole:     model.RoleSystem,
	}

	if created, ok := parseTimestamp(p.CreatedAt); ok {
		order.OrderDate = &created
	}

	order.LineItems = make([]model.LineItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		quantity := int(li.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		note, _ := li.Properties.Lookup("note")
		order.LineItems = append(order.LineItems, model.LineItem{
			SKU:      li.SKU,
			Name:     firstNonEmpty(li.Title, li.Name),
			Quantity: quantity,
			Note:     note,
		})
	}

	order.Customer = mapCustomer(p)
	if addr := p.ShippingAddress; addr != nil {
		order.ShippingAddress = model.Address{
			Address1:   addr.Address1,
			Address2:   addr.Address2,
			PostalCode: strings.TrimSpace(string(addr.Zip)),
			City:       addr.City,
			Country:    addr.Country,
		}
	}
	if zone, ok := n.zones.Match(order.ShippingAddress.PostalCode); ok {
		order.Zone = zone
	}

	delivery := n.delivery.Extract(p)
	order.DeliveryDate = delivery.Date
	order.DeliveryOption = delivery.Option

	addOns := n.addOns.Extract(p)
	order.AddOns = addOns.Items
	order.AddOnsSummary = addOns.Summary

	if len(p.Fulfillments) > 0 {
		last := p.Fulfillments[len(p.Fulfillments)-1]
		order.TrackingNumber = last.TrackingNumber
		order.TrackingURL = last.TrackingURL
		if order.TrackingURL == "" && len(last.TrackingURLs) > 0 {
			order.TrackingURL = last.TrackingURLs[0]
		}
	}

	if strings.TrimSpace(p.CancelledAt) != "" {
		if at, ok := parseTimestamp(p.CancelledAt); ok {
			order.CancelledAt = &at
		}
		order.CancelReason = p.CancelReason
		order.CancelledByRole = model.RoleSystem
	}

	return order
}

// NormalizeRaw decodes data and normalizes it, keeping the raw document.
func (n *Normalizer) NormalizeRaw(data []byte, shop string) (model.Order, *Payload, error) {
	p, err := DecodePayload(data)
	if err != nil {
		return model.Order{}, nil, err
	}
	order := n.Normalize(p, shop)
	order.Raw = json.RawMessage(data)
	return order, p, nil
}

func initialStatus(p *Payload) model.OrderStatus {
	switch {
	case strings.TrimSpace(p.CancelledAt) != "":
		return model.OrderStatusCancelled
	case strings.EqualFold(p.FulfillmentStatus, "fulfilled"):
		return model.OrderStatusFulfilled
	default:
		return model.OrderStatusNew
	}
}

func mapCustomer(p *Payload) model.Customer {
	var c model.Customer
	if addr := p.ShippingAddress; addr != nil {
		c.Name = joinName(addr.FirstName, addr.LastName)
		c.Phone = addr.Phone
	}
	if person := p.Customer; person != nil {
		if c.Name == "" {
			c.Name = joinName(person.FirstName, person.LastName)
		}
		c.Phone = firstNonEmpty(c.Phone, person.Phone)
		c.Email = person.Email
	}
	c.Phone = firstNonEmpty(c.Phone, p.Phone)
	c.Email = firstNonEmpty(p.Email, c.Email)
	c.Message = p.Note
	return c
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
