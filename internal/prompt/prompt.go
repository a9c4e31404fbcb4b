// Package prompt renders the model instructions from embedded twig templates.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tyler-sommer/stick"
)

//go:embed templates/*.twig
var templateFS embed.FS

// Template names
const (
	Extract = "extract"
	Chat    = "chat"
	Summary = "summary"
	Audit   = "audit"
)

// User message framing for the non-chat tasks
const (
	ExtractUserPrefix = "EXTRACT REQUIREMENTS FROM THIS PARTIAL TEXT:\n\n"
	AuditUserPrefix   = "AUDIT DATA:\n"
	SummarySystem     = "You are a CTO."
)

// Renderer renders named templates with stick
type Renderer struct {
	env       *stick.Env
	templates map[string]string
}

// New loads the embedded templates
func New() (*Renderer, error) {
	r := &Renderer{
		env:       stick.New(nil),
		templates: make(map[string]string),
	}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".twig") {
			return nil
		}
		content, err := fs.ReadFile(templateFS, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		r.templates[strings.TrimSuffix(path.Base(p), ".twig")] = string(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MustNew is New for package-level initialization; the templates are embedded
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named template
func (r *Renderer) Render(name string, vars map[string]stick.Value) (string, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}

	var out strings.Builder
	if err := r.env.Execute(tpl, &out, vars); err != nil {
		return "", fmt.Errorf("execute %q: %w", name, err)
	}
	return strings.TrimSpace(out.String()), nil
}

// ExtractionSystem returns the system instruction for requirement extraction
func (r *Renderer) ExtractionSystem(fields []string) (string, error) {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return r.Render(Extract, map[string]stick.Value{"schema": strings.Join(quoted, ", ")})
}

// ChatSystem returns the chat system instruction embedding the condensed dataset
func (r *Renderer) ChatSystem(dataset string, truncated bool, limit int) (string, error) {
	return r.Render(Chat, map[string]stick.Value{
		"dataset":   dataset,
		"truncated": truncated,
		"limit":     limit,
	})
}

// SummaryPrompt returns the executive summary request
func (r *Renderer) SummaryPrompt(dataset string) (string, error) {
	return r.Render(Summary, map[string]stick.Value{"dataset": dataset})
}

// AuditSystem returns the audit instruction for one mode and optional category scope
func (r *Renderer) AuditSystem(mode string, modes []string, category string) (string, error) {
	return r.Render(Audit, map[string]stick.Value{
		"mode":     mode,
		"modes":    strings.Join(modes, ", "),
		"category": category,
	})
}
