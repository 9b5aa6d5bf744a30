package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pulheze/Hafen/internal/cart"
	"github.com/pulheze/Hafen/internal/catalog"
	handlersPkg "github.com/pulheze/Hafen/internal/handlers"
	mw "github.com/pulheze/Hafen/internal/middleware"
	"github.com/pulheze/Hafen/internal/observability"
	"github.com/pulheze/Hafen/internal/storefront"
)

// Form field carrying the catalog id on add forms.
const fieldProduct = "produto"

// CartAddItemHandler adds a product with the quantity from its control.
func CartAddItemHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	product, ok := lookupProduct(w, r, r.PostForm.Get(fieldProduct))
	if !ok {
		return
	}
	page := currentPage(r)
	view := &CartView{}
	res, err := page.AddItem(r.Context(), product, storefront.FormValues(r.PostForm), view.Ports())
	respondCart(w, r, page, view, res, err)
}

// CartAddSubscriptionHandler adds a subscription plan once.
func CartAddSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	product, ok := lookupProduct(w, r, r.PostForm.Get(fieldProduct))
	if !ok {
		return
	}
	page := currentPage(r)
	view := &CartView{}
	res, err := page.AddSubscription(r.Context(), product, view.Ports())
	respondCart(w, r, page, view, res, err)
}

// CartRemoveHandler removes the line at {index}. Out of range is a no-op.
func CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, translate("error.bad_request"))
		return
	}
	page := currentPage(r)
	view := &CartView{}
	res, err := page.RemoveItem(r.Context(), index, view.Ports())
	respondCart(w, r, page, view, res, err)
}

// CheckoutHandler finalizes the simulated purchase.
func CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	page := currentPage(r)
	view := &CartView{}
	res, err := page.Checkout(r.Context(), view.Ports())
	if err == nil && res.Notice.Kind == cart.NoticeCartEmpty {
		if !mw.IsHTMX(r.Context()) {
			renderHome(w, r, page, res.Notice, nil)
			return
		}
		setTriggers(w, res.Notice, nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err == nil {
		observability.FromContext(r.Context()).Info("checkout complete",
			zap.String("order_id", res.Notice.OrderID),
			zap.Int64("total", res.Notice.Total),
		)
	}
	respondCart(w, r, page, view, res, err)
}

func lookupProduct(w http.ResponseWriter, r *http.Request, id string) (catalog.Product, bool) {
	product, err := catalogStore.Lookup(id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			observability.FromContext(r.Context()).Error("catalog lookup failed", zap.Error(err))
		}
		mw.WriteError(w, r, http.StatusNotFound, translate("error.not_found"))
		return catalog.Product{}, false
	}
	return product, true
}

// respondCart answers a cart action with the refreshed cart panel plus an
// out-of-band #cart-count, or the full page for plain form posts.
func respondCart(w http.ResponseWriter, r *http.Request, page *storefront.Page, view *CartView, res storefront.Result, err error) {
	switch {
	case errors.Is(err, cart.ErrQuantityControlMissing), errors.Is(err, cart.ErrViewUnavailable):
		setTriggers(w, res.Notice, res.Nav)
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, storefront.ErrWrongKind):
		mw.WriteError(w, r, http.StatusBadRequest, translate("error.bad_request"))
		return
	case err != nil:
		observability.FromContext(r.Context()).Error("cart action failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if !mw.IsHTMX(r.Context()) {
		renderHome(w, r, page, res.Notice, nil)
		return
	}
	renderFragment(w, r, "frag_cart", handlersPkg.PageData{
		Lang:      siteLang,
		CSRFToken: mw.CSRFToken(r),
		Cart:      view,
		OOB:       true,
	}, func(w http.ResponseWriter) { setTriggers(w, res.Notice, res.Nav) })
}
