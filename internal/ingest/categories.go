package ingest

import "github.com/polkiloo/floristportal/internal/domain/model"

// Category maps an add-on key to the names customers and themes use for it.
type Category struct {
	Key      model.AddOnKey
	Synonyms []string
}

// DefaultCategories is the add-on category table. Text categories precede
// their parent so "Ribbon Text" resolves to ribbon_text rather than ribbon.
var DefaultCategories = []Category{
	{Key: model.AddOnCardMessage, Synonyms: []string{"card text", "korttekst", "kort tekst", "message", "dedication", "bemærkning", "besked"}},
	{Key: model.AddOnCard, Synonyms: []string{"card", "kort", "felicitare", "felicitación"}},
	{Key: model.AddOnRibbonText, Synonyms: []string{"ribbon text", "bånd tekst", "ribbon tekst", "sløjfetekst"}},
	{Key: model.AddOnRibbon, Synonyms: []string{"ribbon", "bånd", "panglica", "band", "sløjfe"}},
	{Key: model.AddOnVase, Synonyms: []string{"vase", "vaza"}},
	{Key: model.AddOnChocolate, Synonyms: []string{"chocolate", "chokolade"}},
	{Key: model.AddOnTeddy, Synonyms: []string{"teddy", "bamse", "ursulet", "bjørn", "teddy bear"}},
}

// DefaultAddOnKeywords flag a line item as an add-on when found in its title.
var DefaultAddOnKeywords = []string{
	"card", "kort", "felicitare",
	"chocolate", "chokolade",
	"vase", "vaza",
	"teddy", "bamse", "ursulet", "bjørn",
	"ribbon", "bånd", "panglica", "band",
	"ekstra", "extra", "add-on", "tilvalg", "addon",
}

// DefaultAddOnSKUPrefixes flag a line item as an add-on by SKU.
var DefaultAddOnSKUPrefixes = []string{"ADDON_", "EXTRA_", "TILVALG_"}

type foldedCategory struct {
	key      model.AddOnKey
	synonyms []string
}

func foldCategories(categories []Category) []foldedCategory {
	out := make([]foldedCategory, 0, len(categories))
	for _, c := range categories {
		fc := foldedCategory{key: c.Key}
		for _, s := range c.Synonyms {
			if f := Normalize(s); f != "" {
				fc.synonyms = append(fc.synonyms, f)
			}
		}
		out = append(out, fc)
	}
	return out
}
