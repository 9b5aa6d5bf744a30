package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/cart"
	handlersPkg "github.com/pulheze/Hafen/internal/handlers"
	mw "github.com/pulheze/Hafen/internal/middleware"
	"github.com/pulheze/Hafen/internal/observability"
	"github.com/pulheze/Hafen/internal/storefront"
)

// HomeHandler opens a fresh page session, replacing the session's previous
// page, and renders the whole storefront with the hero section active.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	sd := mw.GetSession(r)
	page := pages.Open(sd.PageID)
	sd.SetPage(page.ID)
	renderHome(w, r, page, cart.Notice{}, nil)
}

// NavigateHandler activates a section. htmx clients get a nav:changed event;
// plain form posts get the full page.
func NavigateHandler(w http.ResponseWriter, r *http.Request) {
	page := currentPage(r)
	st := page.Navigate(r.Context(), chi.URLParam(r, "section"))
	if !mw.IsHTMX(r.Context()) {
		renderHome(w, r, page, cart.Notice{}, nil)
		return
	}
	if st.Active != "" {
		w.Header().Set("HX-Push-Url", "/#"+st.Active)
	}
	setTriggers(w, cart.Notice{}, &st)
	w.WriteHeader(http.StatusNoContent)
}

// QuantityHandler applies mais, menos or validar to a quantity control and
// returns the replacement input.
func QuantityHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	productID := chi.URLParam(r, "product")
	if _, ok := lookupProduct(w, r, productID); !ok {
		return
	}
	page := currentPage(r)
	n, err := page.AdjustQuantity(r.Context(), productID, chi.URLParam(r, "action"), storefront.FormValues(r.PostForm))
	switch {
	case errors.Is(err, cart.ErrQuantityControlMissing):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, storefront.ErrUnknownAction):
		mw.WriteError(w, r, http.StatusBadRequest, translate("error.bad_request"))
		return
	case err != nil:
		observability.FromContext(r.Context()).Error("quantity adjust failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	control := handlersPkg.Quantity(productID, n)
	if !mw.IsHTMX(r.Context()) {
		renderHome(w, r, page, cart.Notice{}, func(vm *handlersPkg.PageData) {
			for i := range vm.Products {
				if vm.Products[i].ID == productID {
					vm.Products[i].Quantity = control
				}
			}
		})
		return
	}
	renderTemplate(w, r, "frag_quantity_input", control)
}

// ShippingHandler quotes shipping for the posted CEP into #resultado-frete.
func ShippingHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	page := currentPage(r)
	res, err := page.EstimateShipping(r.Context(), storefront.FormValues(r.PostForm))
	switch {
	case errors.Is(err, storefront.ErrFieldMissing):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		observability.FromContext(r.Context()).Error("shipping estimate failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	view := handlersPkg.ShippingView{Text: res.Text, Valid: res.Valid}
	if !mw.IsHTMX(r.Context()) {
		renderHome(w, r, page, cart.Notice{}, func(vm *handlersPkg.PageData) { vm.Shipping = view })
		return
	}
	renderTemplate(w, r, "frag_shipping", view)
}

// ContactHandler accepts the contact form. A complete form is reset and the
// page returns to the hero section.
func ContactHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	page := currentPage(r)
	res, err := page.SubmitContact(r.Context(), storefront.FormValues(r.PostForm))
	if err != nil {
		observability.FromContext(r.Context()).Error("contact submit failed", zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !mw.IsHTMX(r.Context()) {
		renderHome(w, r, page, res.Notice, nil)
		return
	}
	if res.Nav == nil {
		setTriggers(w, res.Notice, nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	renderFragment(w, r, "frag_contact", handlersPkg.PageData{Lang: siteLang, CSRFToken: mw.CSRFToken(r)},
		func(w http.ResponseWriter) { setTriggers(w, res.Notice, res.Nav) })
}

// currentPage returns the page bound to the session, opening one when the
// session has none or it expired.
func currentPage(r *http.Request) *storefront.Page {
	sd := mw.GetSession(r)
	page := pages.Get(sd.PageID)
	sd.SetPage(page.ID)
	return page
}

// renderHome renders the full page from page's current state. patch adjusts
// the view model before rendering.
func renderHome(w http.ResponseWriter, r *http.Request, page *storefront.Page, notice cart.Notice, patch func(*handlersPkg.PageData)) {
	logger := observability.FromContext(r.Context())
	sections, err := contentLib.Sections()
	if err != nil {
		logger.Error("load sections", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	view := &CartView{}
	if err := page.Render(view.Ports()); err != nil {
		logger.Error("cart render failed", zap.Error(err))
	}
	vm := handlersPkg.BuildHomeData(handlersPkg.HomeInput{
		Lang:        siteLang,
		Title:       translate("site.title"),
		Description: translate("site.tagline"),
		SiteURL:     absoluteURL(r),
		PageID:      page.ID,
		CSRFToken:   mw.CSRFToken(r),
		Sections:    sections,
		State:       page.Nav(),
		Catalog:     catalogStore,
		Cart:        view,
		Notice:      noticeText(notice),
	})
	if patch != nil {
		patch(&vm)
	}
	renderPage(w, r, vm)
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, translate("error.bad_request"))
		return false
	}
	return true
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
