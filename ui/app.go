package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.html static/css/*.css
var embeddedFiles embed.FS

// parseTemplates loads every page template with the shared helpers
func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"sci":   func(v float64) string { return fmt.Sprintf("%.3e", v) },
		"fixed": func(v float64, digits int) string { return fmt.Sprintf("%.*f", digits, v) },
		"inc":   func(i int) int { return i + 1 },
		"upper": strings.ToUpper,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

func staticFS() (fs.FS, error) {
	return fs.Sub(embeddedFiles, "static/css")
}
