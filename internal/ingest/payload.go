package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is a Shopify order as delivered by webhooks and the Admin API.
// It is read-only input; the normalizer never mutates it.
type Payload struct {
	ID                  FlexString      `json:"id"`
	Name                string          `json:"name"`
	OrderNumber         FlexString      `json:"order_number"`
	Number              FlexString      `json:"number"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone"`
	CreatedAt           string          `json:"created_at"`
	EstimatedDeliveryAt string          `json:"estimated_delivery_at"`
	Note                string          `json:"note"`
	NoteAttributes      PropertyBag     `json:"note_attributes"`
	Attributes          PropertyBag     `json:"attributes"`
	Metafields          []Metafield     `json:"metafields"`
	LineItems           []LineItem      `json:"line_items"`
	ShippingAddress     *PayloadAddress `json:"shipping_address"`
	Customer            *PayloadPerson  `json:"customer"`
	Currency            string          `json:"currency"`
	PresentmentCurrency string          `json:"presentment_currency"`
	TotalPrice          FlexString      `json:"total_price"`
	FulfillmentStatus   string          `json:"fulfillment_status"`
	Fulfillments        []Fulfillment   `json:"fulfillments"`
	CancelledAt         string          `json:"cancelled_at"`
	CancelReason        string          `json:"cancel_reason"`
}

// LineItem is a payload line.
type LineItem struct {
	SKU          string      `json:"sku"`
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	VariantTitle string      `json:"variant_title"`
	Quantity     FlexInt     `json:"quantity"`
	Price        FlexString  `json:"price"`
	PriceSet     *PriceSet   `json:"price_set"`
	Properties   PropertyBag `json:"properties"`
}

// PriceSet carries shop and presentment money.
type PriceSet struct {
	ShopMoney struct {
		Amount       FlexString `json:"amount"`
		CurrencyCode string     `json:"currency_code"`
	} `json:"shop_money"`
}

// PayloadAddress is a shipping address.
type PayloadAddress struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Address1  string     `json:"address1"`
	Address2  string     `json:"address2"`
	City      string     `json:"city"`
	Zip       FlexString `json:"zip"`
	Country   string     `json:"country"`
	Phone     string     `json:"phone"`
}

// PayloadPerson is the customer record.
type PayloadPerson struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Metafield is a namespaced key/value attached to the order.
type Metafield struct {
	Namespace string     `json:"namespace"`
	Key       string     `json:"key"`
	Value     FlexString `json:"value"`
}

// Fulfillment carries shipment tracking data.
type Fulfillment struct {
	TrackingNumber string   `json:"tracking_number"`
	TrackingURL    string   `json:"tracking_url"`
	TrackingURLs   []string `json:"tracking_urls"`
}

// DecodePayload parses a raw order document.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode order payload: %w", err)
	}
	return &p, nil
}

// Property is one normalized name/value pair.
type Property struct {
	Name  string
	Value string
}

// PropertyBag accepts both encodings a platform uses for custom properties:
// a list of {name, value} objects or a flat object. Both decode to an ordered
// list of pairs. A nil bag means the field was absent or null.
type PropertyBag []Property

// UnmarshalJSON implements json.Unmarshaler.
func (b *PropertyBag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*b = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		bag := make(PropertyBag, 0, len(items))
		for _, item := range items {
			if prop, ok := decodeListProperty(item); ok {
				bag = append(bag, prop)
			}
		}
		*b = bag
		return nil
	case '{':
		bag, err := decodeObjectProperties(trimmed)
		if err != nil {
			return err
		}
		*b = bag
		return nil
	default:
		*b = nil
		return nil
	}
}

// Lookup returns the value of the first property whose folded name equals name.
func (b PropertyBag) Lookup(name string) (string, bool) {
	want := Normalize(name)
	for _, p := range b {
		if Normalize(p.Name) == want {
			return p.Value, true
		}
	}
	return "", false
}

func decodeListProperty(raw json.RawMessage) (Property, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Property{}, false
	}
	if trimmed[0] == '{' {
		var pair struct {
			Name  FlexString `json:"name"`
			Value FlexString `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return Property{}, false
		}
		return Property{Name: string(pair.Name), Value: string(pair.Value)}, true
	}
	var scalar FlexString
	if err := json.Unmarshal(trimmed, &scalar); err != nil || scalar == "" {
		return Property{}, false
	}
	return Property{Name: string(scalar), Value: string(scalar)}, true
}

func decodeObjectProperties(data []byte) (PropertyBag, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	bag := PropertyBag{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("property bag: unexpected key %v", tok)
		}
		var value FlexString
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		bag = append(bag, Property{Name: name, Value: string(value)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return bag, nil
}

// FlexString decodes any JSON scalar as text. Objects and arrays keep their
// compact JSON form; null becomes the empty string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case trimmed[0] == '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	case trimmed[0] == '{' || trimmed[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return err
		}
		*s = FlexString(buf.String())
	default:
		*s = FlexString(trimmed)
	}
	return nil
}

// String returns the text value.
func (s FlexString) String() string { return string(s) }

// FlexInt decodes numbers and numeric strings. Anything else is zero.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	text := strings.TrimSpace(string(s))
	if v, err := strconv.Atoi(text); err == nil {
		*n = FlexInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		*n = FlexInt(int(f))
		return nil
	}
	*n = 0
	return nil
}
