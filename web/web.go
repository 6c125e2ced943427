// Package web embeds the shell page template and its static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templates embed.FS

// Static holds the client script and stylesheet under static/
//
//go:embed static
var Static embed.FS

// NavLink is one entry of the static navigation bar
type NavLink struct {
	Label string
	Href  string
}

// DefaultNav links to each section anchor on the page
var DefaultNav = []NavLink{
	{Label: "Home", Href: "#home"},
	{Label: "About", Href: "#about"},
	{Label: "Skills", Href: "#skills"},
	{Label: "Projects", Href: "#projects"},
	{Label: "Contact", Href: "#contact"},
}

// Renderer renders the embedded templates for echo
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"join": strings.Join,
	}
	t, err := template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render implements echo.Renderer
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
