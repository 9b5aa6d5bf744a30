package seo

type OpenGraph struct {
    Title       string
    Description string
    Image       string
    Type        string
}

type Meta struct {
    Title       string
    Description string
    Canonical   string
    Locale      string
    OG          OpenGraph
}

// NewMeta fills Open Graph fields from the page title and description.
func NewMeta(title, description, canonical, locale string) Meta {
    return Meta{
        Title:       title,
        Description: description,
        Canonical:   canonical,
        Locale:      locale,
        OG: OpenGraph{
            Title:       title,
            Description: description,
            Type:        "website",
        },
    }
}
