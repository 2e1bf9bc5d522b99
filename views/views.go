// Package views renders the portal's HTML pages with the django template engine.
package views

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed templates
var templates embed.FS

// Map is the binding passed to a template.
type Map = map[string]any

// Renderer writes a named page with the given status code.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data Map) error
}

type Views struct {
	engine *django.Engine
}

// New loads the embedded templates.
func New() (*Views, error) {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		return nil, err
	}
	return NewFromFS(sub)
}

// NewFromFS loads every .html template found in fsys.
func NewFromFS(fsys fs.FS) (*Views, error) {
	engine := django.NewFileSystem(http.FS(fsys), ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return &Views{engine: engine}, nil
}

// Render executes the template into a buffer first so a failing template never
// leaves a half written page behind.
func (v *Views) Render(w http.ResponseWriter, status int, name string, data Map) error {
	if data == nil {
		data = Map{}
	}
	var buf bytes.Buffer
	if err := v.engine.Render(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Error renders the error page, falling back to plain text when the page itself
// cannot be rendered.
func Error(v Renderer, w http.ResponseWriter, status int, message string) {
	if err := v.Render(w, status, "error", Map{"status": status, "message": message}); err != nil {
		http.Error(w, message, status)
	}
}
