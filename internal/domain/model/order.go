package model

import (
	"encoding/json"
	"time"
)

// OrderStatus describes the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusNew          OrderStatus = "new"
	OrderStatusAssigned     OrderStatus = "assigned"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusFulfilled    OrderStatus = "fulfilled"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusAssigned,
	OrderStatusInProduction,
	OrderStatusReady,
	OrderStatusFulfilled,
	OrderStatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DeliveryOption classifies how a delivery date was derived. Empty means unknown.
type DeliveryOption string

const (
	DeliveryOptionToday    DeliveryOption = "TODAY"
	DeliveryOptionTomorrow DeliveryOption = "TOMORROW"
	DeliveryOptionDate     DeliveryOption = "DATE"
)

// Source platforms.
const (
	SourcePlatformShopify = "shopify"
	SourcePlatformManual  = "manual"
)

// LineItem is a purchased product line.
type LineItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// Customer holds buyer contact data and the free-text message.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Address is a shipping destination.
type Address struct {
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	PostalCode string `json:"postalCode"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Order is the canonical order record.
type Order struct {
	ID                int64
	OrderNumber       string
	SourcePlatform    string
	SourceOrderID     string
	SourceOrderNumber string
	SourceOrderName   string
	Shop              string

	ReceivedAt     time.Time
	OrderDate      *time.Time
	DeliveryDate   *time.Time
	DeliveryOption DeliveryOption

	LineItems     []LineItem
	AddOns        []AddOn
	AddOnsSummary string

	Customer        Customer
	ShippingAddress Address
	Zone            string

	PartnerID  *int64
	AssignedAt *time.Time
	Status     OrderStatus

	TotalPrice     string
	Currency       string
	TrackingNumber string
	TrackingURL    string

	CreatedByRole     Role
	CreatedByEmail    string
	UpdatedAt         time.Time
	UpdatedByRole     Role
	UpdatedByEmail    string
	UpdateCount       int
	LastUpdatedFields []string

	CancelledAt      *time.Time
	CancelledByRole  Role
	CancelledByEmail string
	CancelReason     string

	Raw json.RawMessage
}

// DisplayNumber returns the number shown to humans.
func (o *Order) DisplayNumber() string {
	switch {
	case o.SourceOrderName != "":
		return o.SourceOrderName
	case o.OrderNumber != "":
		return o.OrderNumber
	default:
		return o.SourceOrderNumber
	}
}

// OrderFilter narrows order listings. Zero values mean "no constraint".
type OrderFilter struct {
	Status       OrderStatus
	PostalCode   string
	PartnerID    *int64
	Unassigned   bool
	DeliveryFrom *time.Time
	DeliveryTo   *time.Time
	ReceivedFrom *time.Time
	ReceivedTo   *time.Time
	Limit        int
}
