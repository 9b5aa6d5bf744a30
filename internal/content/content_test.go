package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSection(t *testing.T, dir, name, body string) {
	t.Helper()
	sections := filepath.Join(dir, "sections")
	if err := os.MkdirAll(sections, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sections, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSectionsParsesFrontMatterAndSanitizes(t *testing.T) {
	dir := t.TempDir()
	writeSection(t, dir, "20-contato.md", "---\nnav_label: Contato\norder: 20\nlayout: Contact\n---\nFale conosco.\n")
	writeSection(t, dir, "00-hero.md", "---\nid: hero\ntitle: Bem-vindo\norder: 0\n---\n**Olá**<script>alert(1)</script>\n")
	writeSection(t, dir, "10-sobre-nos.md", "Sem front matter.\n")

	lib := NewLibrary(dir, 0)
	sections, err := lib.Sections()
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if got := strings.Join(IDs(sections), ","); got != "hero,sobre-nos,contato" {
		t.Fatalf("unexpected order %q", got)
	}

	hero := sections[0]
	if hero.Title != "Bem-vindo" || hero.Layout != LayoutMarkdown || !hero.InNav {
		t.Fatalf("unexpected hero %+v", hero)
	}
	if !strings.Contains(string(hero.Body), "<strong>Olá</strong>") {
		t.Fatalf("expected rendered markdown, got %q", hero.Body)
	}
	if strings.Contains(string(hero.Body), "<script>") {
		t.Fatalf("expected script to be sanitized, got %q", hero.Body)
	}
	if sections[1].Title != "Sobre Nos" {
		t.Fatalf("expected prettified title, got %q", sections[1].Title)
	}
	if sections[2].Layout != LayoutContact || sections[2].NavLabel != "Contato" {
		t.Fatalf("unexpected contact section %+v", sections[2])
	}
}

func TestSectionsCachesWithinTTL(t *testing.T) {
	dir := t.TempDir()
	writeSection(t, dir, "hero.md", "---\ntitle: Um\n---\n")

	lib := NewLibrary(dir, time.Hour)
	first, err := lib.Sections()
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	writeSection(t, dir, "hero.md", "---\ntitle: Dois\n---\n")
	second, err := lib.Sections()
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if first[0].Title != "Um" || second[0].Title != "Um" {
		t.Fatalf("expected cached title, got %q then %q", first[0].Title, second[0].Title)
	}
}

func TestSectionsErrors(t *testing.T) {
	if _, err := NewLibrary(t.TempDir(), 0).Sections(); !errors.Is(err, ErrNoSections) {
		t.Fatalf("expected ErrNoSections, got %v", err)
	}

	dir := t.TempDir()
	writeSection(t, dir, "a.md", "---\nid: hero\n---\n")
	writeSection(t, dir, "b.md", "---\nid: hero\n---\n")
	if _, err := NewLibrary(dir, 0).Sections(); !errors.Is(err, ErrDuplicateSection) {
		t.Fatalf("expected ErrDuplicateSection, got %v", err)
	}

	bad := t.TempDir()
	writeSection(t, bad, "a.md", "---\norder: [\n---\n")
	if _, err := NewLibrary(bad, 0).Sections(); err == nil {
		t.Fatalf("expected front matter parse error")
	}
}

func TestRepositoryContentLoads(t *testing.T) {
	sections, err := NewLibrary(filepath.Join("..", "..", "content"), 0).Sections()
	if err != nil {
		t.Fatalf("Sections returned error: %v", err)
	}
	if sections[0].ID != "hero" {
		t.Fatalf("expected hero first, got %q", sections[0].ID)
	}
}
