package i18n

import (
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "golang.org/x/text/language"
    "golang.org/x/text/message"
)

type Bundle struct {
    dict      map[string]map[string]string
    printers  map[string]*message.Printer
    fallback  string
    supported map[string]struct{}
}

func Load(dir string, fallback string, supported []string) (*Bundle, error) {
    b := &Bundle{
        dict:      map[string]map[string]string{},
        printers:  map[string]*message.Printer{},
        fallback:  fallback,
        supported: map[string]struct{}{},
    }
    if len(supported) == 0 {
        supported = []string{fallback}
    }
    for _, l := range supported {
        b.supported[l] = struct{}{}
        path := filepath.Join(dir, l+".json")
        raw, err := os.ReadFile(path)
        if err != nil {
            // allow missing file for non-default locales
            if l == fallback {
                return nil, fmt.Errorf("load locale %s: %w", l, err)
            }
            continue
        }
        var m map[string]string
        if err := json.Unmarshal(raw, &m); err != nil {
            return nil, fmt.Errorf("unmarshal %s: %w", l, err)
        }
        b.dict[l] = m
        b.printers[l] = message.NewPrinter(printerTag(l))
    }
    if _, ok := b.dict[fallback]; !ok {
        return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
    }
    return b, nil
}

func (b *Bundle) Supported() []string {
    out := make([]string, 0, len(b.supported))
    for k := range b.supported {
        out = append(out, k)
    }
    sort.Strings(out)
    return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
    if lang != "" {
        if m, ok := b.dict[lang]; ok {
            if v, ok := m[key]; ok {
                return v
            }
        }
    }
    if m, ok := b.dict[b.fallback]; ok {
        if v, ok := m[key]; ok {
            return v
        }
    }
    return key
}

// Tf formats the translation of key with args using the locale's number
// conventions.
func (b *Bundle) Tf(lang, key string, args ...any) string {
    tmpl := b.T(lang, key)
    p, ok := b.printers[lang]
    if !ok {
        p = b.printers[b.fallback]
    }
    return p.Sprintf(tmpl, args...)
}

// printerTag maps the short locale code to a regional tag; "pt" formats as pt-BR.
func printerTag(lang string) language.Tag {
    switch strings.ToLower(lang) {
    case "pt", "pt-br":
        return language.BrazilianPortuguese
    }
    tag, err := language.Parse(lang)
    if err != nil {
        return language.Und
    }
    return tag
}
