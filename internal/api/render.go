package api

import (
	"embed"
	"html/template"
	"io"

	"github.com/rflorenc/lxd-resource-dashboard/internal/dashboard"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("dashboard.gohtml").
		Funcs(template.FuncMap{"tabURL": tabURL}).
		ParseFS(templateFS, "templates/*.gohtml"),
)

type pageData struct {
	Title   string
	Version string
	Source  string
	View    dashboard.View
}

// Refreshing reports whether the page should poll until fetches settle.
func (d pageData) Refreshing() bool {
	if d.View.Loading {
		return true
	}
	for _, c := range d.View.Summary.Cards {
		if c.Loading {
			return true
		}
	}
	return false
}

func (d pageData) EmptyTitle() string   { return dashboard.EmptyStateTitle }
func (d pageData) EmptyMessage() string { return dashboard.EmptyStateMessage }

func tabURL(t dashboard.Tab) string {
	if t == dashboard.TabOverview {
		return "/dashboard"
	}
	return "/dashboard?tab=" + string(t)
}

func renderPage(w io.Writer, data pageData) error {
	return pageTemplate.ExecuteTemplate(w, "dashboard.gohtml", data)
}
