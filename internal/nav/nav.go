package nav

import (
    "strings"
    "sync"
)

// DefaultSection is shown on page load, after checkout and after the contact form.
const DefaultSection = "hero"

// Item represents a navigation link pointing at a section.
type Item struct {
    Target   string // data-section value, e.g. "produtos"
    LabelKey string // i18n key, e.g. "nav.produtos"
    Label    string // fallback label when LabelKey is empty
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
    Target   string
    LabelKey string
    Label    string
    Active   bool
}

// RenderedSection tells a template whether a section carries the active class.
type RenderedSection struct {
    ID     string
    Active bool
}

// State is the navigation outcome of the last NavigateTo call.
type State struct {
    Active    string
    Sections  []RenderedSection
    Links     []RenderedItem
    ScrollTop bool
}

// Navigator keeps exactly one known section active and highlights the links
// targeting it.
type Navigator struct {
    mu       sync.Mutex
    sections []string
    links    []Item
    active   string
}

// New builds a navigator over the page's section ids and nav links, starting
// at DefaultSection.
func New(sections []string, links []Item) *Navigator {
    n := &Navigator{
        sections: append([]string(nil), sections...),
        links:    append([]Item(nil), links...),
    }
    n.active = DefaultSection
    return n
}

// NavigateTo activates sectionID. Unknown ids are not an error: no section is
// active afterwards and only links targeting that id would be highlighted.
func (n *Navigator) NavigateTo(sectionID string) State {
    n.mu.Lock()
    defer n.mu.Unlock()
    n.active = strings.TrimSpace(sectionID)
    st := n.stateLocked()
    st.ScrollTop = true
    return st
}

// Default returns to DefaultSection.
func (n *Navigator) Default() State {
    return n.NavigateTo(DefaultSection)
}

// State returns the current state without scrolling.
func (n *Navigator) State() State {
    n.mu.Lock()
    defer n.mu.Unlock()
    return n.stateLocked()
}

// Has reports whether sectionID is a section of the page.
func (n *Navigator) Has(sectionID string) bool {
    for _, id := range n.sections {
        if id == sectionID {
            return true
        }
    }
    return false
}

func (n *Navigator) stateLocked() State {
    st := State{
        Sections: make([]RenderedSection, 0, len(n.sections)),
        Links:    make([]RenderedItem, 0, len(n.links)),
    }
    if n.Has(n.active) {
        st.Active = n.active
    }
    for _, id := range n.sections {
        st.Sections = append(st.Sections, RenderedSection{ID: id, Active: id == n.active})
    }
    for _, it := range n.links {
        label := it.Label
        if label == "" && it.LabelKey == "" {
            label = titleFromSegment(it.Target)
        }
        st.Links = append(st.Links, RenderedItem{
            Target:   it.Target,
            LabelKey: it.LabelKey,
            Label:    label,
            Active:   it.Target != "" && it.Target == n.active,
        })
    }
    return st
}

// IsActive reports whether the section with id is active in st.
func (st State) IsActive(id string) bool {
    for _, s := range st.Sections {
        if s.ID == id {
            return s.Active
        }
    }
    return false
}

func titleFromSegment(seg string) string {
    if seg == "" {
        return seg
    }
    // replace hyphens/underscores with spaces and capitalize first letter
    s := strings.ReplaceAll(seg, "-", " ")
    s = strings.ReplaceAll(s, "_", " ")
    r := []rune(s)
    r[0] = toUpper(r[0])
    return string(r)
}

func toUpper(r rune) rune {
    // ASCII only is sufficient for slugs here
    if r >= 'a' && r <= 'z' {
        return r - ('a' - 'A')
    }
    return r
}
