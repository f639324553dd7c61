// Package view renders the server-side auth pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
)

// Page names accepted by Renderer.Render.
const (
	PageSignIn         = "signin"
	PageSignUp         = "signup"
	PageVerify         = "verify"
	PageTerms          = "terms"
	PageForgotPassword = "forgot_password"
	PageResetPassword  = "reset_password"
	PageLoading        = "loading"
)

var pageNames = []string{
	PageSignIn, PageSignUp, PageVerify, PageTerms,
	PageForgotPassword, PageResetPassword, PageLoading,
}

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the stylesheet and logo assets rooted at "static".
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the data every template receives. Form echoes submitted values back
// so a failed submit keeps what the user typed; passwords are never echoed.
type Page struct {
	Title       string
	CSRF        string
	Error       string
	Success     string
	Loading     bool
	AutoRefresh bool

	Form        map[string]string
	FieldErrors map[string]string

	Return    string
	Email     string
	Digits    []string
	Focus     int
	Token     string
	Done      bool
	CanAccept bool
}

// NewPage returns a Page with its maps allocated.
func NewPage(title string) *Page {
	return &Page{
		Title:       title,
		Form:        map[string]string{},
		FieldErrors: map[string]string{},
	}
}

// Renderer is an echo.Renderer holding one template set per page, each
// combined with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
