package model

import "time"

// OrderEventType names a published order event.
type OrderEventType string

const (
	OrderEventAssigned      OrderEventType = "order.assigned"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	OrderEventCancelled     OrderEventType = "order.cancelled"
)

// OrderEvent is emitted to downstream consumers after workflow changes.
type OrderEvent struct {
	Type         OrderEventType `json:"type"`
	OrderID      int64          `json:"orderId"`
	OrderNumber  string         `json:"orderNumber"`
	Status       OrderStatus    `json:"status"`
	PartnerID    *int64         `json:"partnerId,omitempty"`
	PartnerName  string         `json:"partnerName,omitempty"`
	PartnerEmail string         `json:"partnerEmail,omitempty"`
	Zone         string         `json:"zone,omitempty"`
	DeliveryDate *time.Time     `json:"deliveryDate,omitempty"`
	Recipient    Customer       `json:"recipient"`
	Address      Address        `json:"address"`
	AddOns       string         `json:"addOns,omitempty"`
	ActorRole    Role           `json:"actorRole"`
	ActorEmail   string         `json:"actorEmail,omitempty"`
	OccurredAt   time.Time      `json:"occurredAt"`
}
