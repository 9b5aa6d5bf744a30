package seo

import (
    "encoding/json"
    "fmt"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
    b, err := json.Marshal(v)
    if err != nil {
        return ""
    }
    return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
    m := map[string]any{
        "@context": "https://schema.org",
        "@type":    "Organization",
        "name":     name,
    }
    if url != "" { m["url"] = url }
    if logoURL != "" { m["logo"] = logoURL }
    return m
}

// Product returns a product schema with a single offer. price is in minor units.
func Product(name, description, imageURL, sku string, price int64, currency string) map[string]any {
    m := map[string]any{
        "@type":       "Product",
        "name":        name,
        "description": description,
        "offers": map[string]any{
            "@type":         "Offer",
            "price":         decimalPrice(price),
            "priceCurrency": currency,
            "availability":  "https://schema.org/InStock",
        },
    }
    if imageURL != "" { m["image"] = imageURL }
    if sku != "" { m["sku"] = sku }
    return m
}

// ItemList wraps elements into a schema.org ItemList.
func ItemList(name string, items []map[string]any) map[string]any {
    el := make([]map[string]any, 0, len(items))
    for i, it := range items {
        el = append(el, map[string]any{
            "@type":    "ListItem",
            "position": i + 1,
            "item":     it,
        })
    }
    return map[string]any{
        "@context":        "https://schema.org",
        "@type":           "ItemList",
        "name":            name,
        "itemListElement": el,
    }
}

// schema.org wants a dot decimal regardless of page locale
func decimalPrice(minor int64) string {
    sign := ""
    if minor < 0 {
        sign, minor = "-", -minor
    }
    return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
