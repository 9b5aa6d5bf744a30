package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pulheze/Hafen/internal/cart"
	"github.com/pulheze/Hafen/internal/format"
	"github.com/pulheze/Hafen/internal/nav"
)

// HX-Trigger event names listened for by app.js.
const (
	eventNotice = "app:notice"
	eventNav    = "nav:changed"
)

type noticePayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	OrderID string `json:"orderId,omitempty"`
}

type navPayload struct {
	Active    string `json:"active"`
	ScrollTop bool   `json:"scrollTop"`
}

// noticeText localises n for the site locale.
func noticeText(n cart.Notice) string {
	if n.Empty() || i18nBundle == nil {
		return ""
	}
	key := "notice." + string(n.Kind)
	switch n.Kind {
	case cart.NoticeItemAdded:
		return i18nBundle.Tf(siteLang, key, format.Count(n.Quantity), n.Name)
	case cart.NoticeSubscriptionAdded, cart.NoticeSubscriptionExists:
		return i18nBundle.Tf(siteLang, key, n.Name)
	case cart.NoticeCheckoutComplete:
		return i18nBundle.Tf(siteLang, key, format.Decimal(n.Total))
	default:
		return i18nBundle.T(siteLang, key)
	}
}

// setTriggers emits the notice and navigation events for htmx. Must run
// before the first write.
func setTriggers(w http.ResponseWriter, n cart.Notice, st *nav.State) {
	payload := map[string]any{}
	if !n.Empty() {
		payload[eventNotice] = noticePayload{Kind: string(n.Kind), Message: noticeText(n), OrderID: n.OrderID}
	}
	if st != nil {
		payload[eventNav] = navPayload{Active: st.Active, ScrollTop: st.ScrollTop}
	}
	if len(payload) == 0 {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", asciiJSON(raw))
}

// asciiJSON escapes non-ASCII runes as \uXXXX; browsers read response
// headers as Latin-1.
func asciiJSON(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range string(raw) {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		for _, u := range utf16.Encode([]rune{r}) {
			b.WriteString(`\u`)
			hex := strconv.FormatUint(uint64(u), 16)
			b.WriteString(strings.Repeat("0", 4-len(hex)))
			b.WriteString(hex)
		}
	}
	return b.String()
}
