package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/server/http/dto"
	"github.com/polkiloo/floristportal/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	sync   SyncRunner
	logger *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, sync SyncRunner, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, sync: sync, logger: logger}
}

func listQuery(q dto.ListOrdersQuery) usecase.ListQuery {
	return usecase.ListQuery{
		Status:         model.OrderStatus(q.Status),
		PostalCode:     q.PostalCode,
		PartnerID:      q.PartnerID,
		Unassigned:     q.Unassigned,
		DeliveryPreset: q.Delivery,
		DeliveryDate:   q.DeliveryDate,
		DeliveryFrom:   q.DeliveryFrom,
		DeliveryTo:     q.DeliveryTo,
		ReceivedPreset: q.Received,
		ReceivedFrom:   q.ReceivedFrom,
		ReceivedTo:     q.ReceivedTo,
		Limit:          q.Limit,
	}
}

func bindListQuery(c *gin.Context) (usecase.ListQuery, bool) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return usecase.ListQuery{}, false
	}
	return listQuery(q), true
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	orders, err := h.facade.ListOrders(c.Request.Context(), CurrentActor(c), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponses(orders))
}

// Mine handles GET /api/orders/my. Scoping to the partner happens in the
// use case, so this is List for partner sessions.
func (h *OrderHandler) Mine(c *gin.Context) {
	h.List(c)
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.ManualOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentActor(c), usecase.ManualOrderInput{
		RecipientName: req.RecipientName,
		Phone:         req.Phone,
		Email:         req.Email,
		Address1:      req.Address1,
		Address2:      req.Address2,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Country:       req.Country,
		DeliveryDate:  req.DeliveryDate,
		Message:       req.Message,
		LineItems:     req.LineItems,
		TotalPrice:    req.TotalPrice,
		Currency:      req.Currency,
		PartnerID:     req.PartnerID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(order))
}

// Sync handles POST /api/orders/sync.
func (h *OrderHandler) Sync(c *gin.Context) {
	result, err := h.sync.RunOnce(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentActor(c), id)
	h.respond(c, order, err)
}

// Edit handles PATCH /api/orders/:id.
func (h *OrderHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.OrderPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.facade.EditOrder(c.Request.Context(), CurrentActor(c), id, usecase.OrderPatch{
		RecipientName: req.RecipientName,
		Address1:      req.Address1,
		PostalCode:    req.PostalCode,
		City:          req.City,
		Phone:         req.Phone,
		DeliveryDate:  req.DeliveryDate,
		Message:       req.Message,
	})
	h.respond(c, order, err)
}

// SetStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.facade.SetOrderStatus(c.Request.Context(), CurrentActor(c), id, model.OrderStatus(req.Status))
	h.respond(c, order, err)
}

// Cancel handles PATCH /api/orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentActor(c), id, req.Reason)
	h.respond(c, order, err)
}

// Assign handles PATCH /api/orders/:id/assign.
func (h *OrderHandler) Assign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.facade.AssignOrder(c.Request.Context(), CurrentActor(c), id, req.PartnerID)
	h.respond(c, order, err)
}

// Tracking handles PATCH and POST /api/orders/:id/tracking. POST also
// pushes the fulfillment to the shop.
func (h *OrderHandler) Tracking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	push := c.Request.Method == http.MethodPost
	order, err := h.facade.SetTracking(c.Request.Context(), CurrentActor(c), id, req.TrackingNumber, req.TrackingURL, push)
	h.respond(c, order, err)
}

func (h *OrderHandler) respond(c *gin.Context, order *model.Order, err error) {
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}
