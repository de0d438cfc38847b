package model

// ReportSummary aggregates orders for the admin dashboard.
type ReportSummary struct {
	Total      int
	ByStatus   map[OrderStatus]int
	Unassigned int
	Revenue    map[string]string
}
