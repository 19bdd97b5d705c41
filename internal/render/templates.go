package render

import (
	"embed"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var renderTemplateFS embed.FS

var (
	renderTemplates *template.Template
	renderOnce      sync.Once
	renderErr       error
)

func executeTemplate(name string, data any) (string, error) {
	renderOnce.Do(func() {
		renderTemplates, renderErr = template.New("render").ParseFS(renderTemplateFS, "templates/*.tmpl")
	})

	if renderErr != nil {
		return "", renderErr
	}

	var builder strings.Builder
	if err := renderTemplates.ExecuteTemplate(&builder, name, data); err != nil {
		return "", err
	}

	return strings.TrimRight(builder.String(), "\n"), nil
}
