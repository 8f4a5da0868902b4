package inspect

import (
	"fmt"
	"html/template"
	"io"

	"github.com/erazemk/phonestock/web"
)

// Page renders reports as HTML. Values are escaped by html/template.
type Page struct {
	tmpl *template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"defaultValue": func(v *string) string {
			if v == nil {
				return "NULL"
			}
			return *v
		},
	}
}

// LoadPage parses the embedded schema template.
func LoadPage() (*Page, error) {
	tmpl, err := template.New("schema.html").Funcs(FuncMap()).ParseFS(web.TemplatesFS(), "schema.html")
	if err != nil {
		return nil, fmt.Errorf("parsing schema template: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

// Render writes rep as an HTML page.
func (p *Page) Render(w io.Writer, rep *Report) error {
	return p.tmpl.Execute(w, rep)
}
