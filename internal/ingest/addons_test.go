package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/floristportal/internal/domain/model"
)

func findAddOn(items []model.AddOn, key model.AddOnKey) (model.AddOn, bool) {
	for _, item := range items {
		if item.Key == key {
			return item, true
		}
	}
	return model.AddOn{}, false
}

func TestExtractAddOnsRibbonText(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	p := decodeTestPayload(t, `{"line_items":[{"title":"Ribbon – Red","properties":[{"name":"Ribbon Text","value":"Happy Birthday"}]}]}`)

	got := e.Extract(p)
	text, ok := findAddOn(got.Items, model.AddOnRibbonText)
	require.True(t, ok, "items: %+v", got.Items)
	assert.Equal(t, "Happy Birthday", text.Value)
	assert.Equal(t, model.AddOnSourceProperty, text.Source)
	assert.Equal(t, "Ribbon – Red", text.LineItemTitle)

	line, ok := findAddOn(got.Items, model.AddOnRibbon)
	require.True(t, ok)
	assert.Equal(t, model.AddOnSourceLineItem, line.Source)
	assert.Equal(t, "Yes", line.Value)
	assert.Equal(t, "Ribbon – Red: Yes | Ribbon Text: Happy Birthday", got.Summary)
}

func TestExtractAddOnsNoteFallback(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	got := e.Extract(&Payload{Note: "  Tillykke med de 60 år, kærlig hilsen Anne  "})

	require.Len(t, got.Items, 1)
	assert.Equal(t, model.AddOnSourceNote, got.Items[0].Source)
	assert.Equal(t, model.AddOnCardMessage, got.Items[0].Key)
	assert.Equal(t, "Tillykke med de 60 år, kærlig hilsen Anne", got.Items[0].Value)
	assert.Equal(t, "Note: Tillykke med de 60 år, kærlig hilsen Anne", got.Summary)
}

func TestExtractAddOnsNoteFallbackTruncates(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	got := e.Extract(&Payload{Note: strings.Repeat("å", 600)})
	require.Len(t, got.Items, 1)
	assert.Equal(t, 500, utf8.RuneCountInString(got.Items[0].Value))
}

func TestExtractAddOnsNoteLines(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	got := e.Extract(&Payload{Note: "Kort: Tillykke\r\nBånd: Rød\nring before delivery\nx: ignored"})

	require.Len(t, got.Items, 2)
	assert.Equal(t, model.AddOnCard, got.Items[0].Key)
	assert.Equal(t, "Tillykke", got.Items[0].Value)
	assert.Equal(t, model.AddOnRibbon, got.Items[1].Key)
	assert.Equal(t, "Rød", got.Items[1].Value)
	for _, item := range got.Items {
		assert.Equal(t, model.AddOnSourceNote, item.Source)
	}
}

func TestExtractAddOnsDeduplicates(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	p := decodeTestPayload(t, `{"line_items":[
		{"title":"Buket","properties":[{"name":"Kort tekst","value":"Hej"},{"name":"Kort tekst","value":"Hej"}]},
		{"title":"Buket","properties":{"Kort tekst":"Hej"}}
	]}`)

	got := e.Extract(p)
	require.Len(t, got.Items, 1)
	assert.Equal(t, model.AddOnCardMessage, got.Items[0].Key)
}

func TestExtractAddOnsPropertiesAreInclusive(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	p := decodeTestPayload(t, `{
		"line_items":[{"title":"Buket","sku":"B-1","properties":{"_Kort tekst":"Hej mor","Leveringsdato":"2025-03-14","x":"noise","empty":""}}],
		"note_attributes":[{"name":"Gift message","value":"Kram"}]
	}`)

	got := e.Extract(p)
	require.Len(t, got.Items, 3)

	card := got.Items[0]
	assert.Equal(t, "Kort tekst", card.Label)
	assert.Equal(t, "_Kort tekst", card.RawKey)
	assert.Equal(t, model.AddOnCardMessage, card.Key)
	assert.Equal(t, "B-1", card.SKU)

	assert.Equal(t, model.AddOnOther, got.Items[1].Key)
	assert.Equal(t, "Leveringsdato", got.Items[1].Label)

	assert.Equal(t, model.AddOnSourceNoteAttribute, got.Items[2].Source)
	assert.Equal(t, model.AddOnCardMessage, got.Items[2].Key)
}

func TestExtractAddOnsLineItemDetection(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	p := decodeTestPayload(t, `{
		"presentment_currency":"EUR",
		"line_items":[
			{"title":"Rose bouquet","sku":"ROSE-12","quantity":1,"price":"399.00"},
			{"title":"Lindt","sku":"addon_choc","quantity":2,"price_set":{"shop_money":{"amount":"45.00"}},"price":"6.00"},
			{"title":"Glasvase","variant_title":"Stor","quantity":"1","price":"120.00"}
		]
	}`)

	got := e.Extract(p)
	require.Len(t, got.Items, 2)

	choc := got.Items[0]
	assert.Equal(t, model.AddOnOther, choc.Key)
	assert.Equal(t, 2, choc.Quantity)
	assert.Equal(t, "45.00", choc.Price)
	assert.Equal(t, "EUR", choc.Currency)

	vase := got.Items[1]
	assert.Equal(t, model.AddOnVase, vase.Key)
	assert.Equal(t, "Stor", vase.Value)

	assert.Equal(t, "2× Lindt: Yes (45.00 EUR) | Glasvase: Stor (120.00 EUR)", got.Summary)
}

func TestExtractAddOnsEmpty(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	got := e.Extract(&Payload{})
	assert.Empty(t, got.Items)
	assert.Empty(t, got.Summary)
	assert.Equal(t, AddOns{}, e.Extract(nil))
}

func TestExtractAddOnsDefaultCurrency(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	got := e.Extract(&Payload{LineItems: []LineItem{{Title: "Bamse", Price: "99.00"}}})
	require.Len(t, got.Items, 1)
	assert.Equal(t, "DKK", got.Items[0].Currency)
	assert.Equal(t, model.AddOnTeddy, got.Items[0].Key)
}

func TestClassify(t *testing.T) {
	e := NewAddOnExtractor(nil, nil, nil)
	tests := map[string]model.AddOnKey{
		"Card":           model.AddOnCard,
		"Kort":           model.AddOnCard,
		"Felicitare":     model.AddOnCard,
		"Card text":      model.AddOnCardMessage,
		"Korttekst":      model.AddOnCardMessage,
		"Besked":         model.AddOnCardMessage,
		"text":           model.AddOnCardMessage,
		"Ribbon":         model.AddOnRibbon,
		"Panglică":       model.AddOnRibbon,
		"Ribbon Text":    model.AddOnRibbonText,
		"Sløjfetekst":    model.AddOnRibbonText,
		"Vaza":           model.AddOnVase,
		"Chokolade":      model.AddOnChocolate,
		"Choc":           model.AddOnChocolate,
		"Teddy Bear":     model.AddOnTeddy,
		"Ursuleț":        model.AddOnTeddy,
		"Leveringsdato":  model.AddOnOther,
		"":               model.AddOnOther,
		"Wrapping paper": model.AddOnOther,
	}
	for name, want := range tests {
		assert.Equal(t, want, e.Classify(name), name)
	}
}

func TestCustomCategoryTable(t *testing.T) {
	e := NewAddOnExtractor([]Category{{Key: model.AddOnCard, Synonyms: []string{"billet"}}}, []string{"billet"}, []string{})
	assert.Equal(t, model.AddOnCard, e.Classify("Billet doux"))
	assert.Equal(t, model.AddOnOther, e.Classify("Card"))
}

func TestSummarizeAddOns(t *testing.T) {
	assert.Empty(t, SummarizeAddOns(nil))
	assert.Equal(t, "3× Vase: Yes | Card: Tillykke (25 DKK)", SummarizeAddOns([]model.AddOn{
		{Label: "Vase", Value: "Yes", Quantity: 3},
		{Label: "Card", Value: "Tillykke", Quantity: 1, Price: "25", Currency: "DKK"},
	}))
}
