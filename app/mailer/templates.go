package mailer

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"sync/atomic"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateRegistry holds the parsed email templates behind an atomic
// snapshot. Render works off whatever snapshot is current; Load parses a
// complete replacement set and swaps it in, so in-flight renders never see
// a half-loaded registry.
type TemplateRegistry struct {
	snapshot atomic.Pointer[template.Template]
}

// NewTemplateRegistry parses the embedded templates and returns a registry
// serving them.
func NewTemplateRegistry() (*TemplateRegistry, error) {
	r := &TemplateRegistry{}
	if err := r.Load(templateFS); err != nil {
		return nil, err
	}
	return r, nil
}

// Load parses every templates/*.tmpl file in fsys and atomically replaces
// the current snapshot. The previous snapshot stays valid for renders that
// already started.
func (r *TemplateRegistry) Load(fsys fs.FS) error {
	tmpl, err := template.ParseFS(fsys, "templates/*.tmpl")
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}
	r.snapshot.Store(tmpl)
	return nil
}

// Render executes the named template and returns the resulting HTML.
func (r *TemplateRegistry) Render(name string, data any) (string, error) {
	tmpl := r.snapshot.Load()

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name+".tmpl", data); err != nil {
		return "", fmt.Errorf("failed to render template %q: %w", name, err)
	}
	return b.String(), nil
}
