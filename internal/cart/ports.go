package cart

import (
	"net/url"
	"strings"
)

// QuantityFieldPrefix prefixes the per-product quantity control id and form field.
const QuantityFieldPrefix = "quantidade-"

// Line is one rendered cart row.
type Line struct {
	Index         int
	Name          string
	Quantity      int
	UnitPrice     int64
	LineTotal     int64
	LineTotalText string
	Subscription  bool
}

// ItemList receives the rebuilt item list.
type ItemList interface {
	ShowEmpty()
	ShowLines(lines []Line)
}

// TextSlot receives a single formatted value.
type TextSlot interface {
	SetText(text string)
}

// Ports names the slots a Store renders into.
type Ports struct {
	Items ItemList
	Total TextSlot
	Count TextSlot
}

func (p Ports) missing() []string {
	var out []string
	if p.Items == nil {
		out = append(out, "itens-carrinho")
	}
	if p.Total == nil {
		out = append(out, "total-carrinho")
	}
	if p.Count == nil {
		out = append(out, "cart-count")
	}
	return out
}

// QuantitySource exposes the raw value of a product's quantity control. The
// boolean reports whether the control exists at all.
type QuantitySource interface {
	QuantityValue(productID string) (string, bool)
}

// FormQuantities reads quantity controls from a submitted form.
type FormQuantities url.Values

// QuantityValue implements QuantitySource.
func (f FormQuantities) QuantityValue(productID string) (string, bool) {
	key := QuantityFieldPrefix + strings.TrimSpace(productID)
	values, ok := f[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// StaticQuantities is a fixed map of product id to raw control value.
type StaticQuantities map[string]string

// QuantityValue implements QuantitySource.
func (s StaticQuantities) QuantityValue(productID string) (string, bool) {
	v, ok := s[productID]
	return v, ok
}
