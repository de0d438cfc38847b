package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

const (
	defaultAddOnCurrency = "DKK"
	defaultAddOnValue    = "Yes"
	fallbackNoteLimit    = 500
	minAddOnNameLength   = 2
)

var noteLinePattern = regexp.MustCompile(`^([^:]+):\s*(.+)$`)

// AddOns is the add-on extraction result. An empty Summary means no add-ons.
type AddOns struct {
	Items   []model.AddOn
	Summary string
}

// AddOnExtractor finds customer-selected extras in an order payload.
type AddOnExtractor struct {
	categories  []foldedCategory
	keywords    []string
	skuPrefixes []string
}

// NewAddOnExtractor builds an extractor. Nil arguments select the defaults.
func NewAddOnExtractor(categories []Category, keywords, skuPrefixes []string) *AddOnExtractor {
	if categories == nil {
		categories = DefaultCategories
	}
	if keywords == nil {
		keywords = DefaultAddOnKeywords
	}
	if skuPrefixes == nil {
		skuPrefixes = DefaultAddOnSKUPrefixes
	}
	e := &AddOnExtractor{categories: foldCategories(categories)}
	for _, kw := range keywords {
		if f := Normalize(kw); f != "" {
			e.keywords = append(e.keywords, f)
		}
	}
	for _, prefix := range skuPrefixes {
		e.skuPrefixes = append(e.skuPrefixes, strings.ToUpper(prefix))
	}
	return e
}

// Extract runs the line item, property, note attribute and note passes,
// falls back to the whole note as a card message when nothing was found,
// then deduplicates and summarizes.
func (e *AddOnExtractor) Extract(p *Payload) AddOns {
	if p == nil {
		return AddOns{}
	}
	currency := firstNonEmpty(p.Currency, p.PresentmentCurrency, defaultAddOnCurrency)

	var items []model.AddOn
	items = append(items, e.lineItemPass(p, currency)...)
	for _, li := range p.LineItems {
		title := firstNonEmpty(li.Title, li.Name)
		for _, prop := range li.Properties {
			if addOn, ok := e.pair(model.AddOnSourceProperty, prop.Name, prop.Value, currency); ok {
				addOn.LineItemTitle = title
				addOn.SKU = li.SKU
				items = append(items, addOn)
			}
		}
	}
	for _, prop := range p.NoteAttributes {
		if addOn, ok := e.pair(model.AddOnSourceNoteAttribute, prop.Name, prop.Value, currency); ok {
			items = append(items, addOn)
		}
	}
	items = append(items, e.notePass(p.Note, currency)...)

	note := strings.TrimSpace(p.Note)
	if len(items) == 0 && note != "" {
		items = append(items, model.AddOn{
			Source:   model.AddOnSourceNote,
			Key:      model.AddOnCardMessage,
			Label:    "Note",
			Value:    truncateRunes(note, fallbackNoteLimit),
			Quantity: 1,
			Currency: currency,
			RawKey:   "note",
		})
	}

	items = dedupeAddOns(items)
	return AddOns{Items: items, Summary: SummarizeAddOns(items)}
}

// Classify maps a property or title to an add-on category. Names containing a
// synonym win over names contained in a synonym; within each test the first
// category in table order wins.
func (e *AddOnExtractor) Classify(name string) model.AddOnKey {
	folded := Normalize(name)
	if folded == "" {
		return model.AddOnOther
	}
	for _, c := range e.categories {
		for _, syn := range c.synonyms {
			if strings.Contains(folded, syn) {
				return c.key
			}
		}
	}
	for _, c := range e.categories {
		for _, syn := range c.synonyms {
			if strings.Contains(syn, folded) {
				return c.key
			}
		}
	}
	return model.AddOnOther
}

func (e *AddOnExtractor) lineItemPass(p *Payload, currency string) []model.AddOn {
	var out []model.AddOn
	for _, li := range p.LineItems {
		if !e.isAddOnLine(li) {
			continue
		}
		label := firstNonEmpty(strings.TrimSpace(li.Title), strings.TrimSpace(li.Name), "Add-on")
		value := firstNonEmpty(strings.TrimSpace(li.VariantTitle), defaultAddOnValue)
		quantity := int(li.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		price := ""
		if li.PriceSet != nil {
			price = strings.TrimSpace(string(li.PriceSet.ShopMoney.Amount))
		}
		if price == "" {
			price = strings.TrimSpace(string(li.Price))
		}
		out = append(out, model.AddOn{
			Source:        model.AddOnSourceLineItem,
			Key:           e.Classify(label),
			Label:         label,
			Value:         value,
			Quantity:      quantity,
			Price:         price,
			Currency:      currency,
			LineItemTitle: label,
			SKU:           li.SKU,
			RawKey:        label,
		})
	}
	return out
}

func (e *AddOnExtractor) isAddOnLine(li LineItem) bool {
	sku := strings.ToUpper(strings.TrimSpace(li.SKU))
	for _, prefix := range e.skuPrefixes {
		if sku != "" && strings.HasPrefix(sku, prefix) {
			return true
		}
	}
	haystack := Normalize(firstNonEmpty(li.Title, li.Name) + " " + li.VariantTitle)
	for _, kw := range e.keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func (e *AddOnExtractor) notePass(note, currency string) []model.AddOn {
	if strings.TrimSpace(note) == "" {
		return nil
	}
	var out []model.AddOn
	for _, line := range strings.Split(note, "\n") {
		m := noteLinePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if addOn, ok := e.pair(model.AddOnSourceNote, m[1], m[2], currency); ok {
			out = append(out, addOn)
		}
	}
	return out
}

// pair turns one name/value pair into an add-on. Leading underscores are
// dropped from the label only; too short names are noise.
func (e *AddOnExtractor) pair(source model.AddOnSource, name, value, currency string) (model.AddOn, bool) {
	rawKey := strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if rawKey == "" || value == "" {
		return model.AddOn{}, false
	}
	label := strings.TrimSpace(strings.TrimLeft(rawKey, "_"))
	if utf8.RuneCountInString(Normalize(label)) < minAddOnNameLength {
		return model.AddOn{}, false
	}
	return model.AddOn{
		Source:   source,
		Key:      e.Classify(label),
		Label:    label,
		Value:    value,
		Quantity: 1,
		Currency: currency,
		RawKey:   rawKey,
	}, true
}

func dedupeAddOns(items []model.AddOn) []model.AddOn {
	type dedupeKey struct {
		source model.AddOnSource
		key    model.AddOnKey
		label  string
		value  string
	}
	seen := make(map[dedupeKey]struct{}, len(items))
	out := make([]model.AddOn, 0, len(items))
	for _, item := range items {
		k := dedupeKey{item.Source, item.Key, item.Label, item.Value}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SummarizeAddOns renders add-ons as "2× Label: value (45.00 DKK) | ...".
func SummarizeAddOns(items []model.AddOn) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		if item.Quantity > 1 {
			fmt.Fprintf(&b, "%d× ", item.Quantity)
		}
		fmt.Fprintf(&b, "%s: %s", item.Label, item.Value)
		if item.Price != "" {
			fmt.Fprintf(&b, " (%s %s)", item.Price, item.Currency)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, " | ")
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
