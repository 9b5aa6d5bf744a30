package handlers

import (
	"html/template"
	"strings"

	"github.com/pulheze/Hafen/internal/cart"
	"github.com/pulheze/Hafen/internal/catalog"
	"github.com/pulheze/Hafen/internal/content"
	"github.com/pulheze/Hafen/internal/format"
	"github.com/pulheze/Hafen/internal/nav"
	"github.com/pulheze/Hafen/internal/seo"
)

// HomeInput carries everything BuildHomeData needs for one render.
type HomeInput struct {
	Lang        string
	Title       string
	Description string
	SiteURL     string
	PageID      string
	CSRFToken   string
	Sections    []content.Section
	State       nav.State
	Catalog     *catalog.Catalog
	Cart        any
	Notice      string
}

// BuildHomeData constructs the view model for the storefront page.
func BuildHomeData(in HomeInput) PageData {
	canonical := strings.TrimRight(in.SiteURL, "/") + "/"
	if in.SiteURL == "" {
		canonical = ""
	}
	vm := PageData{
		Title:     in.Title,
		Lang:      in.Lang,
		SEO:       seo.NewMeta(in.Title, in.Description, canonical, in.Lang),
		PageID:    in.PageID,
		CSRFToken: in.CSRFToken,
		Nav:       in.State.Links,
		Sections:  SectionViews(in.Sections, in.State),
		Cart:      in.Cart,
		Notice:    in.Notice,
	}
	if in.Catalog != nil {
		vm.Products = ProductViews(in.Catalog.Products())
		vm.Subscriptions = ProductViews(in.Catalog.Subscriptions())
		vm.JSONLD = jsonLD(in.Title, canonical, in.Catalog)
	}
	return vm
}

// SectionViews marks the section active in st.
func SectionViews(sections []content.Section, st nav.State) []SectionView {
	out := make([]SectionView, 0, len(sections))
	for _, s := range sections {
		out = append(out, SectionView{Section: s, Active: st.IsActive(s.ID)})
	}
	return out
}

// NavLinks returns the navigation entries for sections shown in the menu.
func NavLinks(sections []content.Section) []nav.Item {
	var out []nav.Item
	for _, s := range sections {
		if !s.InNav {
			continue
		}
		out = append(out, nav.Item{Target: s.ID, LabelKey: s.NavKey, Label: s.NavLabel})
	}
	return out
}

// ProductViews maps catalog entries to cards with a quantity control at 1.
func ProductViews(products []catalog.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ProductView{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Image:        p.Image,
			Price:        p.Price,
			PriceText:    format.Decimal(p.Price),
			Subscription: p.IsSubscription(),
			Quantity:     Quantity(p.ID, 1),
		})
	}
	return out
}

// Quantity builds the control view for productID.
func Quantity(productID string, value int) QuantityView {
	return QuantityView{ProductID: productID, ID: cart.QuantityFieldPrefix + productID, Value: value}
}

func jsonLD(name, siteURL string, cat *catalog.Catalog) []template.JS {
	items := make([]map[string]any, 0)
	for _, p := range append(cat.Products(), cat.Subscriptions()...) {
		items = append(items, seo.Product(p.Name, p.Description, absolute(siteURL, p.Image), p.ID, p.Price, cat.Currency))
	}
	return []template.JS{
		template.JS(seo.JSON(seo.Organization(name, siteURL, absolute(siteURL, "/assets/img/logo.svg")))),
		template.JS(seo.JSON(seo.ItemList(name, items))),
	}
}

func absolute(base, path string) string {
	if path == "" || base == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
