package portal

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"login.html", "dashboard.html", "form.html", "detail.html", "error.html"}

type pageData struct {
	Title string
	User  string
	Flash flashes
	Data  any
}

// newPrinter returns a number printer for lang, falling back to English.
func newPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

func parseTemplates(p *message.Printer) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"num": func(v any) string {
			s := strings.TrimSpace(fmt.Sprint(v))
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return s
			}
			return p.Sprintf("%d", n)
		},
		"join": func(items []string) string {
			return strings.Join(items, ", ")
		},
		"absence": absenceLabel,
		"absenceTypes": func() []models.AbsenceType {
			return models.AbsenceTypes
		},
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func absenceLabel(a models.AbsenceType) string {
	switch a {
	case models.AbsenceMaintenance:
		return "Vehicle maintenance"
	case models.AbsenceSickness:
		return "Sickness"
	case models.AbsenceOther:
		return "Other"
	}
	return string(a)
}

// render executes page name into a buffer first so template errors still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	pd := pageData{
		Title: title,
		User:  s.currentSession().DisplayName(),
		Flash: s.popFlashes(w, r),
		Data:  data,
	}

	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", pd); err != nil {
		s.log.Error(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "error.html", http.StatusText(status), msg)
}
