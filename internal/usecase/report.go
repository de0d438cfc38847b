package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/floristportal/internal/domain/model"
	"github.com/polkiloo/floristportal/internal/domain/repository"
)

const (
	summaryLimit = 1000
	exportLimit  = 5000
)

// csvHeader is the column layout of the order export.
var csvHeader = []string{
	"OrderNumber",
	"PartnerName",
	"Status",
	"ReceivedAt",
	"DeliveryDate",
	"RecipientName",
	"Address",
	"Postcode",
	"City",
	"Phone",
	"CardFlag",
	"CardText",
	"ProductSummary",
	"CreatedByRole",
	"CreatedByEmail",
	"UpdatedAt",
	"UpdatedByRole",
	"UpdatedByEmail",
	"UpdateCount",
	"CancelledAt",
	"CancelReason",
}

const utf8BOM = "\ufeff"

// Report is a summary with the orders it was computed from.
type Report struct {
	Summary model.ReportSummary
	Orders  []model.Order
}

// ReportUseCase builds admin reports on top of order listings.
type ReportUseCase struct {
	orders *OrderUseCase
	users  repository.UserRepository
}

func NewReportUseCase(orders *OrderUseCase, users repository.UserRepository) *ReportUseCase {
	return &ReportUseCase{orders: orders, users: users}
}

// Summary counts orders by status and sums revenue per currency.
func (u *ReportUseCase) Summary(ctx context.Context, actor model.Actor, q ListQuery) (*Report, error) {
	q.Limit = summaryLimit
	orders, err := u.orders.list(ctx, actor, q, summaryLimit)
	if err != nil {
		return nil, err
	}
	return &Report{Summary: Summarize(orders), Orders: orders}, nil
}

// Summarize aggregates orders. Cancelled orders do not count as revenue and
// unparseable prices are skipped.
func Summarize(orders []model.Order) model.ReportSummary {
	summary := model.ReportSummary{
		Total:    len(orders),
		ByStatus: make(map[model.OrderStatus]int, len(model.OrderStatuses)),
		Revenue:  make(map[string]string),
	}
	for _, status := range model.OrderStatuses {
		summary.ByStatus[status] = 0
	}

	revenue := make(map[string]decimal.Decimal)
	for i := range orders {
		o := &orders[i]
		summary.ByStatus[o.Status]++
		if o.PartnerID == nil {
			summary.Unassigned++
		}
		if o.Status == model.OrderStatusCancelled || o.TotalPrice == "" {
			continue
		}
		amount, err := decimal.NewFromString(o.TotalPrice)
		if err != nil {
			continue
		}
		currency := strings.ToUpper(o.Currency)
		revenue[currency] = revenue[currency].Add(amount)
	}
	for currency, total := range revenue {
		summary.Revenue[currency] = total.StringFixed(2)
	}
	return summary
}

// ExportCSV writes the matching orders as a UTF-8 CSV with a byte order mark.
func (u *ReportUseCase) ExportCSV(ctx context.Context, actor model.Actor, q ListQuery, w io.Writer) error {
	q.Limit = exportLimit
	orders, err := u.orders.list(ctx, actor, q, exportLimit)
	if err != nil {
		return err
	}
	names, err := u.partnerNames(ctx)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range orders {
		if err := cw.Write(csvRow(&orders[i], names)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (u *ReportUseCase) partnerNames(ctx context.Context) (map[int64]string, error) {
	partners, err := u.users.ListByRole(ctx, model.RolePartner)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	names := make(map[int64]string, len(partners))
	for _, p := range partners {
		names[p.ID] = p.Name
	}
	return names, nil
}

func csvRow(o *model.Order, partners map[int64]string) []string {
	var partner string
	if o.PartnerID != nil {
		partner = partners[*o.PartnerID]
	}
	number := o.DisplayNumber()
	if number == "" {
		number = strconv.FormatInt(o.ID, 10)
	}
	cardFlag, cardText := cardInfo(o.AddOns)

	return []string{
		number,
		partner,
		string(o.Status),
		formatTimestamp(&o.ReceivedAt),
		formatDay(o.DeliveryDate),
		o.Customer.Name,
		o.ShippingAddress.Address1,
		o.ShippingAddress.PostalCode,
		o.ShippingAddress.City,
		o.Customer.Phone,
		cardFlag,
		cardText,
		productSummary(o.LineItems),
		string(o.CreatedByRole),
		o.CreatedByEmail,
		formatTimestamp(&o.UpdatedAt),
		string(o.UpdatedByRole),
		o.UpdatedByEmail,
		strconv.Itoa(o.UpdateCount),
		formatTimestamp(o.CancelledAt),
		o.CancelReason,
	}
}

func cardInfo(addOns []model.AddOn) (string, string) {
	flag := "No"
	var text string
	for _, a := range addOns {
		switch a.Key {
		case model.AddOnCard:
			flag = "Yes"
		case model.AddOnCardMessage:
			flag = "Yes"
			if text == "" {
				text = a.Value
			}
		}
	}
	return flag, text
}

func productSummary(items []model.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, li := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", li.Quantity, li.Name))
	}
	return strings.Join(parts, "; ")
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05")
}

func formatDay(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}
