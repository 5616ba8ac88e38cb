package storefront

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/kuitang/storefront-e2e/internal/fixture"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds one parsed template set per page, each combined with the
// shared base layout.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFS, "templates")
}

func newRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	funcs := template.FuncMap{
		"price": fixture.FormatCents,
	}
	base, err := template.New("base.html").Funcs(funcs).ParseFS(fsys, path.Join(dir, "base.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	pages, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, page := range pages {
		name := path.Base(page)
		if name == "base.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base template: %w", err)
		}
		tmpl, err := clone.ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}
	return r, nil
}

// Render executes a page inside the base layout and writes it with status.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
