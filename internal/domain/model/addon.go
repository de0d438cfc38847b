package model

// AddOnSource names the payload location an add-on was found in.
type AddOnSource string

const (
	AddOnSourceLineItem      AddOnSource = "line_item"
	AddOnSourceProperty      AddOnSource = "property"
	AddOnSourceNoteAttribute AddOnSource = "note_attribute"
	AddOnSourceNote          AddOnSource = "note"
)

// AddOnKey is a normalized add-on category.
type AddOnKey string

const (
	AddOnCard        AddOnKey = "card"
	AddOnCardMessage AddOnKey = "card_message"
	AddOnRibbon      AddOnKey = "ribbon"
	AddOnRibbonText  AddOnKey = "ribbon_text"
	AddOnVase        AddOnKey = "vase"
	AddOnChocolate   AddOnKey = "chocolate"
	AddOnTeddy       AddOnKey = "teddy"
	AddOnOther       AddOnKey = "other"
)

// AddOn is a customer-selected extra attached to an order.
type AddOn struct {
	Source        AddOnSource `json:"source"`
	Key           AddOnKey    `json:"key"`
	Label         string      `json:"label"`
	Value         string      `json:"value"`
	Quantity      int         `json:"quantity"`
	Price         string      `json:"price,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	LineItemTitle string      `json:"lineItemTitle,omitempty"`
	SKU           string      `json:"sku,omitempty"`
	RawKey        string      `json:"rawKey"`
}
