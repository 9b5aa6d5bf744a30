// Package storefront binds one cart and one navigator per page session and
// turns user actions into mutate-then-render steps.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/cart"
	"github.com/pulheze/Hafen/internal/catalog"
	"github.com/pulheze/Hafen/internal/checkout"
	"github.com/pulheze/Hafen/internal/nav"
	"github.com/pulheze/Hafen/internal/observability"
	"github.com/pulheze/Hafen/internal/shipping"
)

// Form field names shared with the page markup.
const (
	FieldPostalCode = "cep-frete"
	FieldName       = "nome"
	FieldEmail      = "email"
	FieldMessage    = "mensagem"
)

// Quantity control actions.
const (
	QuantityIncrement = "mais"
	QuantityDecrement = "menos"
	QuantityValidate  = "validar"
)

var (
	// ErrFieldMissing is returned when a form lacks a field the action reads.
	ErrFieldMissing = errors.New("storefront: field missing")
	// ErrUnknownAction is returned for quantity actions other than mais, menos, validar.
	ErrUnknownAction = errors.New("storefront: unknown quantity action")
	// ErrWrongKind is returned when a subscription is added as a product or vice versa.
	ErrWrongKind = errors.New("storefront: wrong product kind")
)

// Form exposes submitted fields. The boolean reports whether the field was sent.
type Form interface {
	Field(name string) (string, bool)
}

// FormValues adapts url.Values to Form and cart.QuantitySource.
type FormValues url.Values

// Field implements Form.
func (f FormValues) Field(name string) (string, bool) {
	values, ok := f[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// QuantityValue implements cart.QuantitySource.
func (f FormValues) QuantityValue(productID string) (string, bool) {
	return cart.FormQuantities(f).QuantityValue(productID)
}

// Result describes what an action changed.
type Result struct {
	Notice cart.Notice
	// Nav is set when the action moved the page to another section.
	Nav *nav.State
	// Changed reports whether the cart contents changed.
	Changed bool
}

// ShippingResult is the text shown in #resultado-frete.
type ShippingResult struct {
	Text  string
	Valid bool
	Quote shipping.Quote
}

// Page is one page session.
type Page struct {
	ID string

	mu       sync.Mutex
	cart     *cart.Store
	nav      *nav.Navigator
	checkout *checkout.Simulator
	logger   *zap.Logger
	lastSeen time.Time
	now      func() time.Time
}

func newPage(id string, sections []string, links []nav.Item, sim *checkout.Simulator, logger *zap.Logger, now func() time.Time) *Page {
	logger = logger.With(zap.String("page_id", id))
	return &Page{
		ID:       id,
		cart:     cart.NewStore(logger.Named("cart")),
		nav:      nav.New(sections, links),
		checkout: sim,
		logger:   logger,
		lastSeen: now(),
		now:      now,
	}
}

// Items returns a snapshot of the cart.
func (p *Page) Items() []cart.Item {
	return p.cart.Items()
}

// Nav returns the current navigation state.
func (p *Page) Nav() nav.State {
	return p.nav.State()
}

// Navigate activates sectionID.
func (p *Page) Navigate(ctx context.Context, sectionID string) nav.State {
	_, span := observability.StartSpan(ctx, "storefront.navigate", attribute.String("section", sectionID))
	defer span.End()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	return p.nav.NavigateTo(sectionID)
}

// Render draws the cart into ports.
func (p *Page) Render(ports cart.Ports) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	return p.cart.Render(ports)
}

// AddItem adds product using its quantity control from quantities, then renders.
func (p *Page) AddItem(ctx context.Context, product catalog.Product, quantities cart.QuantitySource, ports cart.Ports) (Result, error) {
	_, span := observability.StartSpan(ctx, "storefront.add_item", attribute.String("product", product.ID))
	defer span.End()
	if product.IsSubscription() {
		return Result{}, fmt.Errorf("%w: %s is a subscription", ErrWrongKind, product.ID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	notice, err := p.cart.AddItem(product.Name, product.Price, product.ID, quantities)
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: notice, Changed: true}, p.cart.Render(ports)
}

// AddSubscription adds a subscription plan once and renders either way.
func (p *Page) AddSubscription(ctx context.Context, product catalog.Product, ports cart.Ports) (Result, error) {
	_, span := observability.StartSpan(ctx, "storefront.add_subscription", attribute.String("product", product.ID))
	defer span.End()
	if !product.IsSubscription() {
		return Result{}, fmt.Errorf("%w: %s is not a subscription", ErrWrongKind, product.ID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	notice := p.cart.AddSubscription(product.Name, product.Price)
	res := Result{Notice: notice, Changed: notice.Kind == cart.NoticeSubscriptionAdded}
	return res, p.cart.Render(ports)
}

// RemoveItem removes the line at index, if any, and renders.
func (p *Page) RemoveItem(ctx context.Context, index int, ports cart.Ports) (Result, error) {
	_, span := observability.StartSpan(ctx, "storefront.remove_item", attribute.Int("index", index))
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	removed := p.cart.RemoveItem(index)
	return Result{Changed: removed}, p.cart.Render(ports)
}

// Checkout confirms a non-empty cart, empties it, renders and returns to the
// default section. An empty cart only yields a notice.
func (p *Page) Checkout(ctx context.Context, ports cart.Ports) (Result, error) {
	ctx, span := observability.StartSpan(ctx, "storefront.checkout")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	if p.cart.Len() == 0 {
		return Result{Notice: cart.Notice{Kind: cart.NoticeCartEmpty}}, nil
	}

	conf, err := p.checkout.Confirm(ctx, checkout.ConfirmRequest{
		Total: p.cart.Total(),
		Items: p.cart.ItemCount(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("storefront: checkout: %w", err)
	}
	notice, _ := p.cart.Checkout()
	notice.OrderID = conf.OrderID
	span.SetAttributes(attribute.String("order_id", conf.OrderID))

	res := Result{Notice: notice, Changed: true}
	renderErr := p.cart.Render(ports)
	st := p.nav.Default()
	res.Nav = &st
	return res, renderErr
}

// AdjustQuantity applies a quantity control action to the value posted for
// productID and returns the new control value.
func (p *Page) AdjustQuantity(ctx context.Context, productID, action string, quantities cart.QuantitySource) (int, error) {
	_, span := observability.StartSpan(ctx, "storefront.adjust_quantity",
		attribute.String("product", productID),
		attribute.String("action", action),
	)
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	var raw string
	ok := false
	if quantities != nil {
		raw, ok = quantities.QuantityValue(productID)
	}
	if !ok {
		p.logger.Error("quantity control not found", zap.String("control", cart.QuantityFieldPrefix+productID))
		return 0, fmt.Errorf("%w: %s%s", cart.ErrQuantityControlMissing, cart.QuantityFieldPrefix, productID)
	}
	switch action {
	case QuantityIncrement:
		return cart.Increment(raw), nil
	case QuantityDecrement:
		return cart.Decrement(raw), nil
	case QuantityValidate:
		return cart.Coerce(raw), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// EstimateShipping quotes shipping for the posted CEP. Invalid codes are not
// an error; they produce the inline validation text.
func (p *Page) EstimateShipping(ctx context.Context, form Form) (ShippingResult, error) {
	_, span := observability.StartSpan(ctx, "storefront.estimate_shipping")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	var raw string
	ok := false
	if form != nil {
		raw, ok = form.Field(FieldPostalCode)
	}
	if !ok {
		p.logger.Error("shipping elements not found", zap.String("field", FieldPostalCode))
		return ShippingResult{}, fmt.Errorf("%w: %s", ErrFieldMissing, FieldPostalCode)
	}
	quote, err := shipping.Estimate(raw)
	if err != nil {
		if errors.Is(err, shipping.ErrInvalidPostalCode) {
			return ShippingResult{Text: shipping.InvalidMessage}, nil
		}
		return ShippingResult{}, err
	}
	return ShippingResult{Text: quote.Message(), Valid: true, Quote: quote}, nil
}

// SubmitContact accepts the contact form. A complete form returns to the
// default section; an incomplete one only yields a notice.
func (p *Page) SubmitContact(ctx context.Context, form Form) (Result, error) {
	_, span := observability.StartSpan(ctx, "storefront.submit_contact")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.touch()
	if form == nil {
		p.logger.Error("contact form not found")
		return Result{}, fmt.Errorf("%w: form", ErrFieldMissing)
	}
	var missing []string
	for _, field := range []string{FieldName, FieldEmail, FieldMessage} {
		v, _ := form.Field(field)
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Result{Notice: cart.Notice{Kind: cart.NoticeContactInvalid}}, nil
	}
	email, _ := form.Field(FieldEmail)
	p.logger.Info("contact message received", zap.String("email_domain", emailDomain(email)))
	st := p.nav.Default()
	return Result{Notice: cart.Notice{Kind: cart.NoticeContactSent}, Nav: &st}, nil
}

// LastSeen returns the time of the last action.
func (p *Page) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *Page) markSeen() {
	p.mu.Lock()
	p.touch()
	p.mu.Unlock()
}

func (p *Page) touch() {
	p.lastSeen = p.now()
}

func emailDomain(email string) string {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return ""
	}
	return strings.ToLower(domain)
}
