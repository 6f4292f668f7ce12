package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = mustParseTemplates()

var templateFuncs = template.FuncMap{
	"usd": func(v float64) string {
		return fmt.Sprintf("$%.2f", v)
	},
	"mul": func(a float64, b int) float64 {
		return a * float64(b)
	},
	"capitalize": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Each page is the layout plus one content template, parsed once at init.
func mustParseTemplates() map[string]*template.Template {
	pages := []string{"listing", "detail", "cart", "checkout", "confirmation", "error"}
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		out[page] = template.Must(
			template.New("layout.html").Funcs(templateFuncs).ParseFS(
				templatesFS,
				"templates/layout.html",
				"templates/"+page+".html",
			),
		)
	}
	return out
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := pageTemplates[page]
	if !ok {
		h.log.Error("unknown page template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		h.log.Error("render failed", "page", page, "err", err)
	}
}
