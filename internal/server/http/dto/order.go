package dto

import (
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// ListOrdersQuery binds order listing query parameters.
type ListOrdersQuery struct {
	Status       string `form:"status"`
	PostalCode   string `form:"postalCode"`
	PartnerID    *int64 `form:"partnerId"`
	Unassigned   bool   `form:"unassigned"`
	Delivery     string `form:"delivery"`
	DeliveryDate string `form:"deliveryDate"`
	DeliveryFrom string `form:"deliveryFrom"`
	DeliveryTo   string `form:"deliveryTo"`
	Received     string `form:"received"`
	ReceivedFrom string `form:"receivedFrom"`
	ReceivedTo   string `form:"receivedTo"`
	Limit        int    `form:"limit" binding:"omitempty,min=1"`
}

// OrderPatchRequest carries editable fields; absent fields stay untouched.
type OrderPatchRequest struct {
	RecipientName *string `json:"recipientName"`
	Address1      *string `json:"address1"`
	PostalCode    *string `json:"postalCode"`
	City          *string `json:"city"`
	Phone         *string `json:"phone"`
	DeliveryDate  *string `json:"deliveryDate"`
	Message       *string `json:"message"`
}

// StatusRequest changes the workflow status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CancelRequest cancels an order.
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

// AssignRequest sets the partner; null unassigns.
type AssignRequest struct {
	PartnerID *int64 `json:"partnerId"`
}

// TrackingRequest sets shipment tracking.
type TrackingRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	TrackingURL    string `json:"trackingUrl" binding:"omitempty,url"`
}

// ManualOrderRequest creates an order by hand.
type ManualOrderRequest struct {
	RecipientName string           `json:"recipientName" binding:"required"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email" binding:"omitempty,email"`
	Address1      string           `json:"address1" binding:"required"`
	Address2      string           `json:"address2"`
	PostalCode    string           `json:"postalCode" binding:"required"`
	City          string           `json:"city"`
	Country       string           `json:"country"`
	DeliveryDate  string           `json:"deliveryDate"`
	Message       string           `json:"message"`
	LineItems     []model.LineItem `json:"lineItems"`
	TotalPrice    string           `json:"totalPrice"`
	Currency      string           `json:"currency"`
	PartnerID     *int64           `json:"partnerId"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID                int64                `json:"id"`
	OrderNumber       string               `json:"orderNumber"`
	SourcePlatform    string               `json:"sourcePlatform"`
	SourceOrderID     string               `json:"sourceOrderId,omitempty"`
	Shop              string               `json:"shop,omitempty"`
	Status            model.OrderStatus    `json:"status"`
	ReceivedAt        time.Time            `json:"receivedAt"`
	OrderDate         *time.Time           `json:"orderDate,omitempty"`
	DeliveryDate      string               `json:"deliveryDate,omitempty"`
	DeliveryOption    model.DeliveryOption `json:"deliveryOption,omitempty"`
	Customer          model.Customer       `json:"customer"`
	ShippingAddress   model.Address        `json:"shippingAddress"`
	Zone              string               `json:"zone"`
	PartnerID         *int64               `json:"partnerId"`
	AssignedAt        *time.Time           `json:"assignedAt,omitempty"`
	LineItems         []model.LineItem     `json:"lineItems"`
	AddOns            []model.AddOn        `json:"addOns"`
	AddOnsSummary     string               `json:"addOnsSummary"`
	TotalPrice        string               `json:"totalPrice"`
	Currency          string               `json:"currency"`
	TrackingNumber    string               `json:"trackingNumber,omitempty"`
	TrackingURL       string               `json:"trackingUrl,omitempty"`
	CreatedByRole     model.Role           `json:"createdByRole"`
	CreatedByEmail    string               `json:"createdByEmail,omitempty"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	UpdatedByRole     model.Role           `json:"updatedByRole,omitempty"`
	UpdatedByEmail    string               `json:"updatedByEmail,omitempty"`
	UpdateCount       int                  `json:"updateCount"`
	LastUpdatedFields []string             `json:"lastUpdatedFields,omitempty"`
	CancelledAt       *time.Time           `json:"cancelledAt,omitempty"`
	CancelledByRole   model.Role           `json:"cancelledByRole,omitempty"`
	CancelledByEmail  string               `json:"cancelledByEmail,omitempty"`
	CancelReason      string               `json:"cancelReason,omitempty"`
}

// NewOrderResponse maps o. The delivery date is a calendar day.
func NewOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.DisplayNumber(),
		SourcePlatform:    o.SourcePlatform,
		SourceOrderID:     o.SourceOrderID,
		Shop:              o.Shop,
		Status:            o.Status,
		ReceivedAt:        o.ReceivedAt,
		OrderDate:         o.OrderDate,
		DeliveryOption:    o.DeliveryOption,
		Customer:          o.Customer,
		ShippingAddress:   o.ShippingAddress,
		Zone:              o.Zone,
		PartnerID:         o.PartnerID,
		AssignedAt:        o.AssignedAt,
		LineItems:         o.LineItems,
		AddOns:            o.AddOns,
		AddOnsSummary:     o.AddOnsSummary,
		TotalPrice:        o.TotalPrice,
		Currency:          o.Currency,
		TrackingNumber:    o.TrackingNumber,
		TrackingURL:       o.TrackingURL,
		CreatedByRole:     o.CreatedByRole,
		CreatedByEmail:    o.CreatedByEmail,
		UpdatedAt:         o.UpdatedAt,
		UpdatedByRole:     o.UpdatedByRole,
		UpdatedByEmail:    o.UpdatedByEmail,
		UpdateCount:       o.UpdateCount,
		LastUpdatedFields: o.LastUpdatedFields,
		CancelledAt:       o.CancelledAt,
		CancelledByRole:   o.CancelledByRole,
		CancelledByEmail:  o.CancelledByEmail,
		CancelReason:      o.CancelReason,
	}
	if o.DeliveryDate != nil {
		resp.DeliveryDate = o.DeliveryDate.UTC().Format(time.DateOnly)
	}
	if resp.LineItems == nil {
		resp.LineItems = []model.LineItem{}
	}
	if resp.AddOns == nil {
		resp.AddOns = []model.AddOn{}
	}
	return resp
}

// NewOrderResponses maps a listing.
func NewOrderResponses(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
