// Package cart holds the page-session shopping cart and renders it into
// named view ports.
package cart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pulheze/Hafen/internal/format"
	"go.uber.org/zap"
)

var (
	// ErrViewUnavailable is returned by Render when a port is missing.
	ErrViewUnavailable = errors.New("cart: view unavailable")
	// ErrQuantityControlMissing is returned when a product has no quantity control.
	ErrQuantityControlMissing = errors.New("cart: quantity control missing")
)

// Item is a cart entry.
type Item struct {
	Name         string
	UnitPrice    int64
	Quantity     int
	Subscription bool
}

// LineTotal returns unit price times quantity in minor units.
func (i Item) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Store is an ordered cart. Display order is insertion order.
type Store struct {
	mu     sync.Mutex
	items  []Item
	logger *zap.Logger
}

// NewStore returns an empty cart. A nil logger is replaced with a no-op one.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Items returns a copy of the entries.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total returns the sum of line totals.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

// ItemCount returns the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.items)
}

// AddItem adds a regular product using the quantity from its control. A
// missing, non-numeric or non-positive value counts as 1. When the control
// itself is absent nothing changes and ErrQuantityControlMissing is returned.
func (s *Store) AddItem(name string, unitPrice int64, productID string, quantities QuantitySource) (Notice, error) {
	var raw string
	ok := false
	if quantities != nil {
		raw, ok = quantities.QuantityValue(productID)
	}
	if !ok {
		s.logger.Error("quantity control not found",
			zap.String("control", QuantityFieldPrefix+productID),
			zap.String("product", name),
		)
		return Notice{}, fmt.Errorf("%w: %s%s", ErrQuantityControlMissing, QuantityFieldPrefix, productID)
	}
	qty := Coerce(raw)
	if unitPrice < 0 {
		unitPrice = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(name, false); idx >= 0 {
		s.items[idx].Quantity = min(s.items[idx].Quantity+qty, MaxQuantity)
	} else {
		s.items = append(s.items, Item{Name: name, UnitPrice: unitPrice, Quantity: qty})
	}
	return Notice{Kind: NoticeItemAdded, Name: name, Quantity: qty}, nil
}

// AddSubscription adds a subscription once. Subscriptions always carry quantity 1.
func (s *Store) AddSubscription(name string, unitPrice int64) Notice {
	if unitPrice < 0 {
		unitPrice = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(name, true) >= 0 {
		return Notice{Kind: NoticeSubscriptionExists, Name: name}
	}
	s.items = append(s.items, Item{Name: name, UnitPrice: unitPrice, Quantity: 1, Subscription: true})
	return Notice{Kind: NoticeSubscriptionAdded, Name: name, Quantity: 1}
}

// RemoveItem drops the entry at index. Out of range indexes are ignored.
func (s *Store) RemoveItem(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return false
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return true
}

// Checkout empties a non-empty cart and reports the total that was due. On an
// empty cart it returns a NoticeCartEmpty notice and false.
func (s *Store) Checkout() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Notice{Kind: NoticeCartEmpty}, false
	}
	due := total(s.items)
	qty := count(s.items)
	s.items = nil
	return Notice{Kind: NoticeCheckoutComplete, Total: due, Quantity: qty}, true
}

// Render rebuilds every port from the current entries. It is idempotent.
func (s *Store) Render(ports Ports) error {
	if missing := ports.missing(); len(missing) > 0 {
		s.logger.Error("cart view containers not found", zap.Strings("missing", missing))
		return fmt.Errorf("%w: %s", ErrViewUnavailable, strings.Join(missing, ", "))
	}

	s.mu.Lock()
	lines := make([]Line, 0, len(s.items))
	for i, it := range s.items {
		lt := it.LineTotal()
		lines = append(lines, Line{
			Index:         i,
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			LineTotal:     lt,
			LineTotalText: format.Decimal(lt),
			Subscription:  it.Subscription,
		})
	}
	due := total(s.items)
	qty := count(s.items)
	s.mu.Unlock()

	if len(lines) == 0 {
		ports.Items.ShowEmpty()
	} else {
		ports.Items.ShowLines(lines)
	}
	ports.Total.SetText(format.Decimal(due))
	ports.Count.SetText(format.Count(qty))
	return nil
}

func (s *Store) indexOf(name string, subscription bool) int {
	for i, it := range s.items {
		if it.Name == name && it.Subscription == subscription {
			return i
		}
	}
	return -1
}

func total(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

func count(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
