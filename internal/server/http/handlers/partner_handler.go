package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/server/http/dto"
	"github.com/polkiloo/floristportal/internal/usecase"
)

// PartnerHandler exposes partner administration.
type PartnerHandler struct {
	facade PartnerFacade
	logger *slog.Logger
}

// NewPartnerHandler constructs PartnerHandler.
func NewPartnerHandler(facade PartnerFacade, logger *slog.Logger) *PartnerHandler {
	return &PartnerHandler{facade: facade, logger: logger}
}

func partnerInput(req dto.PartnerRequest) usecase.PartnerInput {
	return usecase.PartnerInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Address:    req.Address,
		ZoneRanges: req.ZoneRanges,
	}
}

func userResponses(users []model.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return out
}

// List handles GET /api/partners.
func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.facade.Partners(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, userResponses(partners))
}

// Create handles POST /api/partners.
func (h *PartnerHandler) Create(c *gin.Context) {
	var req dto.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	partner, err := h.facade.CreatePartner(c.Request.Context(), partnerInput(req))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(partner))
}

// Update handles PUT /api/partners/:id.
func (h *PartnerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	partner, err := h.facade.UpdatePartner(c.Request.Context(), id, partnerInput(req))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(partner))
}

// Delete handles DELETE /api/partners/:id.
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.facade.DeletePartner(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
