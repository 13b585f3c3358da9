package view

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/newhope/newhope-admin/internal/shared"
	"github.com/newhope/newhope-admin/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	loc       *time.Location
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Auth        shared.AuthContext
	Data        any
}

// Option customises the Engine.
type Option func(*Engine)

// WithLocation sets the zone used by date helpers.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine parses the embedded templates.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{loc: time.UTC}
	for _, opt := range opts {
		opt(e)
	}
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(e.loc).Format("02/01/2006 15:04")
		},
		"formatTimestamp": func(ts shared.Timestamp) string {
			if !ts.Valid {
				return "—"
			}
			return ts.Time.In(e.loc).Format("02/01/2006 15:04")
		},
		"vnd": func(v any) string {
			switch val := v.(type) {
			case decimal.Decimal:
				return shared.FormatVND(val)
			case shared.Amount:
				if !val.Valid {
					return "—"
				}
				return shared.FormatVND(val.Value)
			case *decimal.Decimal:
				if val == nil {
					return ""
				}
				return shared.FormatVND(*val)
			default:
				return fmt.Sprint(v)
			}
		},
		"count": func(n any) string {
			switch val := n.(type) {
			case int:
				return shared.FormatCount(int64(val))
			case int64:
				return shared.FormatCount(val)
			default:
				return fmt.Sprint(n)
			}
		},
		"fieldError": func(errs any, field string) string {
			switch val := errs.(type) {
			case shared.ValidationErrors:
				return val[field]
			case map[string]string:
				return val[field]
			default:
				return ""
			}
		},
		"selected": func(a, b string) bool { return a == b },
		"pageURL": func(page int, query string) template.URL {
			v, _ := url.ParseQuery(query)
			v.Set("page", strconv.Itoa(page))
			return template.URL("?" + v.Encode())
		},
		"active": func(current, prefix string) bool {
			if prefix == "/" {
				return current == "/"
			}
			return len(current) >= len(prefix) && current[:len(prefix)] == prefix
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	e.templates = tpl
	return e, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// Location returns the display time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}
