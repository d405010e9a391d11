package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/fulfillbridge/internal/license"
	"github.com/fulfillbridge/internal/payment"
)

const (
	viewIndex   = "index"
	viewSuccess = "success"
	viewError   = "error"
)

//go:embed templates/*.html
var templateFS embed.FS

// SuccessView is the data of the success page.
type SuccessView struct {
	License *license.License `json:"license"`
	Order   *payment.Order   `json:"order"`
}

// ErrorView is the data of the error page.
type ErrorView struct {
	Error string
}

// TemplateRenderer implements echo.Renderer over the embedded templates.
type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
