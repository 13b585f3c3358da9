package orders

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/shared"
)

// Order is one customer appointment or purchase.
type Order struct {
	ID            string           `json:"-"`
	TransactionID string           `json:"transactionId,omitempty"`
	FullName      string           `json:"fullName,omitempty"`
	Email         string           `json:"email,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Address       string           `json:"address,omitempty"`
	Datetime      shared.Timestamp `json:"datetime"`
	State         Status           `json:"state"`
	TotalPrice    shared.Amount    `json:"totalPrice"`
	Services      []LineItem       `json:"services"`
}

// LineItem is one entry of an order's services.
type LineItem struct {
	Title    string          `json:"title"`
	Quantity shared.Quantity `json:"quantity"`
	Price    shared.Amount   `json:"price"`
	Options  Options         `json:"options"`
}

// Option is a chosen variant of a line item.
type Option struct {
	Name     string          `json:"name"`
	Quantity shared.Quantity `json:"quantity"`
	Price    shared.Amount   `json:"price"`
}

// OptionsKind discriminates Options.
type OptionsKind uint8

const (
	NoOptions OptionsKind = iota
	SingleOptionKind
	OptionListKind
)

// Options holds either a single option or a list of options.
type Options struct {
	kind   OptionsKind
	single Option
	list   []Option
}

// Single wraps one option.
func Single(o Option) Options {
	return Options{kind: SingleOptionKind, single: o}
}

// List wraps several options.
func List(opts ...Option) Options {
	return Options{kind: OptionListKind, list: opts}
}

// Kind reports which variant is held.
func (o Options) Kind() OptionsKind { return o.kind }

// All flattens the union for display.
func (o Options) All() []Option {
	switch o.kind {
	case SingleOptionKind:
		return []Option{o.single}
	case OptionListKind:
		return o.list
	default:
		return nil
	}
}

// UnmarshalJSON picks the variant from the JSON shape. Elements that are not
// objects are dropped.
func (o *Options) UnmarshalJSON(data []byte) error {
	*o = Options{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var opt Option
		if err := json.Unmarshal(data, &opt); err != nil {
			return nil
		}
		*o = Single(opt)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		list := make([]Option, 0, len(raw))
		for _, item := range raw {
			item = bytes.TrimSpace(item)
			if len(item) == 0 || item[0] != '{' {
				continue
			}
			var opt Option
			if err := json.Unmarshal(item, &opt); err != nil {
				continue
			}
			list = append(list, opt)
		}
		*o = List(list...)
	}
	return nil
}

// MarshalJSON writes the variant back in its original shape.
func (o Options) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case SingleOptionKind:
		return json.Marshal(o.single)
	case OptionListKind:
		if o.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(o.list)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON reads "name", falling back to the product sub-record field
// "OptionName".
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       *string         `json:"name"`
		OptionName *string         `json:"OptionName"`
		Quantity   shared.Quantity `json:"quantity"`
		Price      shared.Amount   `json:"price"`
		PriceAlt   shared.Amount   `json:"Price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Option{Quantity: raw.Quantity, Price: raw.Price}
	switch {
	case raw.Name != nil:
		o.Name = *raw.Name
	case raw.OptionName != nil:
		o.Name = *raw.OptionName
	}
	if !o.Price.Valid {
		o.Price = raw.PriceAlt
	}
	return nil
}

// UnmarshalJSON reads "title", falling back to "name".
func (li *LineItem) UnmarshalJSON(data []byte) error {
	type plain LineItem
	var raw struct {
		plain
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*li = LineItem(raw.plain)
	if strings.TrimSpace(li.Title) == "" {
		li.Title = raw.Name
	}
	return nil
}

// UnmarshalJSON decodes an order. Customer fields of the wrong type decode as
// "" and malformed entries in services are skipped, so only a document that
// is not a JSON object hides the order.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var raw struct {
		plain
		TransactionID shared.Text     `json:"transactionId"`
		FullName      shared.Text     `json:"fullName"`
		Email         shared.Text     `json:"email"`
		Phone         shared.Text     `json:"phone"`
		Address       shared.Text     `json:"address"`
		Services      json.RawMessage `json:"services"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Order(raw.plain)
	o.TransactionID = string(raw.TransactionID)
	o.FullName = string(raw.FullName)
	o.Email = string(raw.Email)
	o.Phone = string(raw.Phone)
	o.Address = string(raw.Address)
	o.Services = decodeLineItems(raw.Services)
	return nil
}

func decodeLineItems(data json.RawMessage) []LineItem {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	items := make([]LineItem, 0, len(raw))
	for _, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		var item LineItem
		if err := json.Unmarshal(entry, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// DisplayState maps an empty state to new, matching the status chart.
func (o Order) DisplayState() Status {
	if o.State == "" {
		return StatusNew
	}
	return o.State
}

// ItemCount sums line item quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Services {
		n += item.Quantity.Int()
	}
	return n
}

// Subtotal sums price times quantity over line items with a valid price.
// Orders from older front-end versions carry no line prices; callers fall
// back to TotalPrice then.
func (o Order) Subtotal() (decimal.Decimal, bool) {
	sum := decimal.Zero
	priced := false
	for _, item := range o.Services {
		if !item.Price.Valid {
			continue
		}
		priced = true
		sum = sum.Add(item.Price.Value.Mul(decimal.NewFromInt(int64(item.Quantity.Int()))))
	}
	return sum, priced
}
