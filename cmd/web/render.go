package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	mw "github.com/pulheze/Hafen/internal/middleware"
	"github.com/pulheze/Hafen/internal/nav"
	"github.com/pulheze/Hafen/internal/observability"
)

var (
	tmplMu    sync.RWMutex
	tmplCache *template.Template
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"now":   time.Now,
		"t":     translate,
		"label": func(item nav.RenderedItem) string {
			if item.LabelKey != "" {
				if v := translate(item.LabelKey); v != item.LabelKey {
					return v
				}
			}
			return item.Label
		},
		"csrfHeaders": func(token string) string {
			raw, _ := json.Marshal(map[string]string{mw.CSRFHeader: token})
			return string(raw)
		},
	}
}

func translate(key string) string {
	if i18nBundle == nil {
		return key
	}
	return i18nBundle.T(siteLang, key)
}

func parseTemplates() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(templateFuncs()).ParseFiles(files...)
}

func cacheTemplates() error {
	tc, err := parseTemplates()
	if err != nil {
		return err
	}
	tmplMu.Lock()
	tmplCache = tc
	tmplMu.Unlock()
	return nil
}

func templates() (*template.Template, error) {
	if devMode {
		return parseTemplates()
	}
	tmplMu.RLock()
	defer tmplMu.RUnlock()
	if tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return tmplCache, nil
}

// renderPage executes the base layout.
func renderPage(w http.ResponseWriter, r *http.Request, data any) {
	renderTemplate(w, r, "base", data)
}

// renderTemplate executes a named template into a buffer so a failing
// template never leaves a half-written response.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	renderFragment(w, r, name, data, nil)
}

// renderFragment is renderTemplate with a hook that runs only once the
// template succeeded, before headers are sent.
func renderFragment(w http.ResponseWriter, r *http.Request, name string, data any, onSuccess func(http.ResponseWriter)) {
	logger := observability.FromContext(r.Context())
	t, err := templates()
	if err != nil {
		logger.Error("template parse failed", zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template error")
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("template exec failed", zap.String("template", name), zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "template error")
		return
	}
	if onSuccess != nil {
		onSuccess(w)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
