package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/almacen/internal/auth"
	"github.com/erazemk/almacen/internal/employees"
	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/model"
	webembed "github.com/erazemk/almacen/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"isStaff":     model.IsStaff,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleManager:
				return "Manager"
			case model.RoleUser:
				return "User"
			default:
				return role
			}
		},
		"txnName": func(t model.TxnType) string {
			switch t {
			case model.TxnPurchase:
				return "Purchase"
			case model.TxnIssue:
				return "Issue"
			case model.TxnAdjust:
				return "Adjustment"
			default:
				return string(t)
			}
		},
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"price": func(d decimal.NullDecimal) string {
			if !d.Valid {
				return ""
			}
			return d.Decimal.StringFixed(2)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		"datetime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04")
		},
		"signed": func(n int) string {
			if n > 0 {
				return fmt.Sprintf("+%d", n)
			}
			return fmt.Sprint(n)
		},
		"join": strings.Join,
	}
}

var pages = []string{
	"login.html",
	"dashboard.html",
	"inventory.html",
	"item_form.html",
	"item_adjust.html",
	"purchases.html",
	"purchase_new.html",
	"purchase_detail.html",
	"requisitions.html",
	"requisition_new.html",
	"requisition_detail.html",
	"categories.html",
	"suppliers.html",
	"employees.html",
	"employee_new.html",
	"activate.html",
	"users.html",
	"profile.html",
	"settings_logo.html",
	"error.html",
}

// Standalone pages are rendered without the layout.
var standalone = []string{
	"labels.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl, err := template.New(page).Funcs(FuncMap()).Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		if tmpl, err = tmpl.Parse(string(pageBytes)); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}

	for _, page := range standalone {
		tmpl, err := template.New(page).Funcs(FuncMap()).ParseFS(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page inside the layout.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.render(w, http.StatusOK, name, "layout", data)
}

// RenderStatus renders a page inside the layout with a non-200 status.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	ts.render(w, status, name, "layout", data)
}

// RenderPartial renders a single named block of a page, used to answer
// fragment requests.
func (ts *Templates) RenderPartial(w http.ResponseWriter, name, block string, data any) {
	ts.render(w, http.StatusOK, name, block, data)
}

// RenderStandalone renders a page that carries its own document.
func (ts *Templates) RenderStandalone(w http.ResponseWriter, name string, data any) {
	ts.render(w, http.StatusOK, name, name, data)
}

func (ts *Templates) render(w http.ResponseWriter, status int, name, entry string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	// Render into a buffer so a failing template does not leave a half
	// written page behind a 200.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, entry, data); err != nil {
		slog.Error("failed to render template", "template", name, "entry", entry, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title    string
	SiteName string
	HasLogo  bool
	User     *auth.Claims
	Flash    *Flash
	Error    string
	Success  string
	Path     string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Inventory *inventory.Service
	Employees *employees.Service
	SiteName  string
	Now       func() time.Time

	hasLogo atomic.Bool
}

// page builds the base data for a request.
func (s *Server) page(r *http.Request, title string) PageData {
	rc := requestContext(r.Context())
	return PageData{
		Title:    title,
		SiteName: s.SiteName,
		HasLogo:  s.hasLogo.Load(),
		User:     rc.Claims,
		Flash:    rc.Flash,
		Path:     r.URL.Path,
	}
}

// actor returns the inventory actor for the logged-in user.
func (s *Server) actor(r *http.Request) inventory.Actor {
	claims := GetWebClaims(r.Context())
	return inventory.Actor{UserID: claims.UserID, Role: claims.Role}
}
