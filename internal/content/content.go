// Package content loads the page sections from markdown files with YAML
// front matter.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Section layouts select which template block renders a section body.
const (
	LayoutMarkdown      = "markdown"
	LayoutProducts      = "products"
	LayoutSubscriptions = "subscriptions"
	LayoutCart          = "cart"
	LayoutContact       = "contact"
)

const defaultContentDir = "content"

var (
	// ErrNoSections is returned when the sections directory holds no markdown.
	ErrNoSections = errors.New("content: no sections")
	// ErrDuplicateSection is returned when two files declare the same id.
	ErrDuplicateSection = errors.New("content: duplicate section id")
)

// Section is one top-level block of the single page.
type Section struct {
	ID       string
	Title    string
	NavLabel string
	NavKey   string
	InNav    bool
	Order    int
	Layout   string
	Summary  string
	Body     template.HTML
}

type sectionFrontMatter struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	NavLabel string `yaml:"nav_label"`
	NavKey   string `yaml:"nav_key"`
	Nav      *bool  `yaml:"nav"`
	Order    int    `yaml:"order"`
	Layout   string `yaml:"layout"`
	Summary  string `yaml:"summary"`
}

// Library caches the parsed sections of a content directory.
type Library struct {
	dir    string
	ttl    time.Duration
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu       sync.RWMutex
	sections []Section
	expires  time.Time
}

// NewLibrary returns a library reading <dir>/sections/*.md. A zero ttl keeps
// the first successful load forever.
func NewLibrary(dir string, ttl time.Duration) *Library {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	return &Library{
		dir:    dir,
		ttl:    ttl,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: newSectionHTMLPolicy(),
	}
}

// Sections returns the page sections sorted by order, then id.
func (l *Library) Sections() ([]Section, error) {
	now := time.Now()
	l.mu.RLock()
	if l.sections != nil && (l.ttl <= 0 || now.Before(l.expires)) {
		out := cloneSections(l.sections)
		l.mu.RUnlock()
		return out, nil
	}
	l.mu.RUnlock()

	sections, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.sections = sections
	l.expires = now.Add(l.ttl)
	l.mu.Unlock()
	return cloneSections(sections), nil
}

// IDs returns the section ids in page order.
func IDs(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.ID)
	}
	return out
}

func (l *Library) load() ([]Section, error) {
	pattern := filepath.Join(l.dir, "sections", "*.md")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("content: glob %s: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSections, filepath.Join(l.dir, "sections"))
	}

	seen := make(map[string]string, len(files))
	sections := make([]Section, 0, len(files))
	for _, file := range files {
		sec, err := l.readSection(file)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[sec.ID]; ok {
			return nil, fmt.Errorf("%w %q in %s and %s", ErrDuplicateSection, sec.ID, prev, file)
		}
		seen[sec.ID] = file
		sections = append(sections, sec)
	}
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Order != sections[j].Order {
			return sections[i].Order < sections[j].Order
		}
		return sections[i].ID < sections[j].ID
	})
	return sections, nil
}

func (l *Library) readSection(file string) (Section, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Section{}, fmt.Errorf("content: %s: %w", file, err)
		}
		return Section{}, err
	}
	fm, body := splitFrontMatter(string(data))
	front := sectionFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Section{}, fmt.Errorf("content: parse front matter %s: %w", file, err)
		}
	}

	slug := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	// "10-produtos.md" orders by prefix when front matter omits it
	if prefix, rest, ok := strings.Cut(slug, "-"); ok && isDigits(prefix) {
		slug = rest
	}
	sec := Section{
		ID:       firstNonEmpty(strings.TrimSpace(front.ID), slug),
		Title:    strings.TrimSpace(front.Title),
		NavLabel: strings.TrimSpace(front.NavLabel),
		NavKey:   strings.TrimSpace(front.NavKey),
		InNav:    front.Nav == nil || *front.Nav,
		Order:    front.Order,
		Layout:   strings.ToLower(strings.TrimSpace(front.Layout)),
		Summary:  strings.TrimSpace(front.Summary),
	}
	if sec.Layout == "" {
		sec.Layout = LayoutMarkdown
	}
	if sec.Title == "" {
		sec.Title = prettifySlug(sec.ID)
	}

	var buf bytes.Buffer
	if err := l.md.Convert([]byte(body), &buf); err != nil {
		return Section{}, fmt.Errorf("content: render %s: %w", file, err)
	}
	sec.Body = template.HTML(l.policy.SanitizeBytes(buf.Bytes()))
	return sec, nil
}

func newSectionHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "div")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func cloneSections(src []Section) []Section {
	out := make([]Section, len(src))
	copy(out, src)
	return out
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
