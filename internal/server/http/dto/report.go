package dto

import "github.com/polkiloo/floristportal/internal/domain/model"

// SummaryResponse is the admin dashboard summary.
type SummaryResponse struct {
	Total      int                       `json:"total"`
	ByStatus   map[model.OrderStatus]int `json:"byStatus"`
	Unassigned int                       `json:"unassigned"`
	Revenue    map[string]string         `json:"revenue"`
}

// NewSummaryResponse maps s.
func NewSummaryResponse(s model.ReportSummary) SummaryResponse {
	return SummaryResponse{
		Total:      s.Total,
		ByStatus:   s.ByStatus,
		Unassigned: s.Unassigned,
		Revenue:    s.Revenue,
	}
}
