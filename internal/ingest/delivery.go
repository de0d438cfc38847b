package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

// DefaultDeliveryTimezone is the civil calendar used for "today" and "tomorrow".
const DefaultDeliveryTimezone = "Europe/Copenhagen"

// Delivery is the result of delivery extraction. A nil Date means unknown;
// an empty Option with a Date means the order creation time was used.
type Delivery struct {
	Date   *time.Time
	Option model.DeliveryOption
}

var deliveryKeywords = foldAll([]string{
	"leveringsdato",
	"levering dato",
	"delivery date",
	"delivery_date",
	"leveringsvalg",
	"delivery",
	"afhentningsdato",
	"estimated_delivery",
	"levering",
	"pickup date",
	"data livrare",
	"data livrarii",
	"livrare",
	"data ridicare",
})

var (
	todayValues    = foldAll([]string{"today", "i dag", "idag"})
	tomorrowValues = foldAll([]string{"tomorrow", "i morgen", "imorgen"})
)

var (
	isoDatePrefix    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	dayMonthYear     = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})[./](\d{4})$`)
	dottedDatePrefix = regexp.MustCompile(`^(\d{4})\.(\d{2})\.(\d{2})`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DeliveryExtractor derives the delivery date of an order. It holds only
// immutable configuration and is safe for concurrent use.
type DeliveryExtractor struct {
	loc *time.Location
	now func() time.Time
}

// NewDeliveryExtractor builds an extractor computing civil days in loc.
// A nil now uses time.Now.
func NewDeliveryExtractor(loc *time.Location, now func() time.Time) *DeliveryExtractor {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DeliveryExtractor{loc: loc, now: now}
}

// Location returns the civil-day timezone.
func (e *DeliveryExtractor) Location() *time.Location { return e.loc }

// Extract scans the payload sources in priority order; a later matching
// source replaces an earlier result. Without any match the creation time is
// returned with no option.
func (e *DeliveryExtractor) Extract(p *Payload) Delivery {
	if p == nil {
		return Delivery{}
	}
	today := e.todayNoon()

	var (
		result  Delivery
		matched bool
	)
	apply := func(d Delivery, ok bool) {
		if ok {
			result, matched = d, true
		}
	}

	if ts, ok := parseTimestamp(p.EstimatedDeliveryAt); ok {
		apply(Delivery{Date: &ts, Option: model.DeliveryOptionDate}, true)
	}

	apply(e.fromBag(p.NoteAttributes, today))

	for _, item := range p.LineItems {
		apply(e.fromBag(item.Properties, today))
	}

	for _, field := range p.Metafields {
		name := strings.TrimSpace(field.Namespace + " " + field.Key)
		apply(e.fromPair(name, string(field.Value), today))
	}

	attributes := p.Attributes
	if attributes == nil {
		attributes = p.NoteAttributes
	}
	apply(e.fromBag(attributes, today))

	if matched {
		return result
	}
	if created, ok := parseTimestamp(p.CreatedAt); ok {
		return Delivery{Date: &created}
	}
	return Delivery{}
}

// ExtractDate parses a user-entered delivery value ("i morgen", "14.03.2025")
// with the same rules used for payload attributes.
func (e *DeliveryExtractor) ExtractDate(value string) (Delivery, bool) {
	return e.classify(value, e.todayNoon())
}

// CivilDay returns the [start, end) bounds of the civil day containing t.
func (e *DeliveryExtractor) CivilDay(t time.Time) (time.Time, time.Time) {
	local := t.In(e.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.loc)
	return start, start.AddDate(0, 0, 1)
}

// Now returns the extractor clock reading.
func (e *DeliveryExtractor) Now() time.Time { return e.now() }

func (e *DeliveryExtractor) fromBag(bag PropertyBag, today time.Time) (Delivery, bool) {
	var (
		result  Delivery
		matched bool
	)
	for _, prop := range bag {
		if d, ok := e.fromPair(prop.Name, prop.Value, today); ok {
			result, matched = d, true
		}
	}
	return result, matched
}

func (e *DeliveryExtractor) fromPair(name, value string, today time.Time) (Delivery, bool) {
	if !isDeliveryKey(name) {
		return Delivery{}, false
	}
	return e.classify(value, today)
}

func (e *DeliveryExtractor) classify(value string, today time.Time) (Delivery, bool) {
	folded := Normalize(value)
	if folded == "" {
		return Delivery{}, false
	}
	switch {
	case containsString(todayValues, folded):
		return Delivery{Date: &today, Option: model.DeliveryOptionToday}, true
	case containsString(tomorrowValues, folded):
		tomorrow := today.AddDate(0, 0, 1)
		return Delivery{Date: &tomorrow, Option: model.DeliveryOptionTomorrow}, true
	}
	if day, ok := parseCalendarDate(strings.TrimSpace(value)); ok {
		return Delivery{Date: &day, Option: model.DeliveryOptionDate}, true
	}
	return Delivery{}, false
}

// todayNoon returns 12:00 UTC on the current civil date in e.loc.
func (e *DeliveryExtractor) todayNoon() time.Time {
	local := e.now().In(e.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, time.UTC)
}

func isDeliveryKey(name string) bool {
	folded := normalizeFieldName(name)
	if folded == "" {
		return false
	}
	for _, kw := range deliveryKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// parseCalendarDate accepts YYYY-MM-DD, DD.MM.YYYY, DD/MM/YYYY and YYYY.MM.DD
// and anchors the day at 12:00 UTC.
func parseCalendarDate(s string) (time.Time, bool) {
	if m := isoDatePrefix.FindStringSubmatch(s); m != nil {
		return noonUTC(m[1], m[2], m[3])
	}
	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		return noonUTC(m[3], m[2], m[1])
	}
	if m := dottedDatePrefix.FindStringSubmatch(s); m != nil {
		return noonUTC(m[1], m[2], m[3])
	}
	return time.Time{}, false
}

func noonUTC(year, month, day string) (time.Time, bool) {
	y, errY := strconv.Atoi(year)
	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, normalizeFieldName(v))
	}
	return out
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
