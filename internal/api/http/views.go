package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templatesFS embed.FS

// View names.
const (
	viewIndex    = "index.html"
	viewAccepted = "accepted.html"
	viewRejected = "rejected.html"
	viewWeather  = "weatherResults.html"
	viewRemove   = "remove.html"
)

// views renders the embedded HTML templates.
type views struct {
	tmpl *template.Template
}

func loadViews() (*views, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &views{tmpl: tmpl}, nil
}

// render executes the named view into a buffer first so a template error
// never leaves a half-written response.
func (v *views) render(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// weatherView is the data behind weatherResults.html.
type weatherView struct {
	Empty bool
	Lines []string
}

// removeView is the data behind remove.html.
type removeView struct {
	Deleted int64
}
