// Package view renders the HTML panel pages.
package view

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/librarydb/librarydb/internal/auth"
	"github.com/librarydb/librarydb/internal/model"
)

//go:embed templates/*.html
var content embed.FS

// Page names.
const (
	PageHome       = "home.html"
	PageLogin      = "login.html"
	PageProfile    = "profile.html"
	PageBorrowings = "borrowings.html"
)

var pages = []string{PageHome, PageLogin, PageProfile, PageBorrowings}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(model.BirthdayLayout)
	},
}

// Renderer executes page templates against the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page template.
func New() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(content, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render writes page with status. The page is executed into a buffer first
// so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Data) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Data is the value passed to page templates.
type Data map[string]any

// TemplateVars returns the variables every page receives:
// logged_in, email and darkmode.
func TemplateVars(ctx context.Context) Data {
	data := Data{
		"logged_in": false,
		"email":     "",
		"darkmode":  false,
	}

	if sess := auth.SessionFromContext(ctx); sess != nil {
		data["darkmode"] = sess.DarkMode
	}
	if id := auth.IdentityFromContext(ctx); id != nil {
		data["logged_in"] = true
		data["email"] = id.Email
	}
	return data
}

// PageVars is TemplateVars plus the current path, used by the dark mode link.
func PageVars(r *http.Request) Data {
	return TemplateVars(r.Context()).With(Data{"current_path": r.URL.Path})
}

// With returns a copy of d extended with extra.
func (d Data) With(extra Data) Data {
	out := make(Data, len(d)+len(extra))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
