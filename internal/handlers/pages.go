package handlers

import (
	"html/template"

	"github.com/pulheze/Hafen/internal/content"
	"github.com/pulheze/Hafen/internal/nav"
	"github.com/pulheze/Hafen/internal/seo"
)

// PageData is the view model for the single storefront page and its fragments.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	JSONLD    []template.JS
	PageID    string
	CSRFToken string

	Nav      []nav.RenderedItem
	Sections []SectionView

	Products      []ProductView
	Subscriptions []ProductView

	// Optional per-fragment payloads
	Cart     any
	Shipping ShippingView
	Quantity QuantityView
	Notice   string
	// OOB marks fragment responses that also refresh #cart-count.
	OOB bool
}

// SectionView is a content section with its visibility for this render.
type SectionView struct {
	content.Section
	Active bool
}

// ProductView is one card in the products or subscriptions grid.
type ProductView struct {
	ID           string
	Name         string
	Description  string
	Image        string
	Price        int64
	PriceText    string
	Subscription bool
	Quantity     QuantityView
}

// QuantityView is the #quantidade-<id> control.
type QuantityView struct {
	ProductID string
	ID        string
	Value     int
}

// ShippingView is the #resultado-frete text.
type ShippingView struct {
	Text  string
	Valid bool
}
