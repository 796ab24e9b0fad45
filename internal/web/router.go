// Package web serves the HTML interface.
package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/almacen/internal/employees"
	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
	webembed "github.com/erazemk/almacen/web"
)

// Option configures the web server.
type Option func(*Server)

// WithSiteName sets the product name shown in the layout.
func WithSiteName(name string) Option {
	return func(s *Server) { s.SiteName = name }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.Now = now }
}

// NewServer parses the templates and returns a Server.
func NewServer(db *sql.DB, jwtSecret string, inv *inventory.Service, emp *employees.Service, opts ...Option) (*Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Inventory: inv,
		Employees: emp,
		SiteName:  "Almacen",
		Now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logo, err := store.GetLogo(context.Background(), db)
	if err != nil {
		slog.Warn("failed to load logo", "error", err)
	}
	s.hasLogo.Store(len(logo) > 0)
	return s, nil
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, inv *inventory.Service, emp *employees.Service, opts ...Option) (http.Handler, error) {
	s, err := NewServer(db, jwtSecret, inv, emp, opts...)
	if err != nil {
		return nil, err
	}
	return s.Routes(), nil
}

// Routes registers every page route.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	all := func(h http.HandlerFunc) http.Handler { return s.requireRole(model.RoleUser, h) }
	staff := func(h http.HandlerFunc) http.Handler { return s.requireRole(model.RoleManager, h) }
	admin := func(h http.HandlerFunc) http.Handler { return s.requireRole(model.RoleAdmin, h) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)
	mux.HandleFunc("GET /logo", s.LogoGet)
	mux.HandleFunc("GET /healthz", s.Health)
	mux.HandleFunc("GET /activate/{token}", s.ActivatePage)
	mux.HandleFunc("GET /activate/{token}/{$}", s.ActivatePage)
	mux.HandleFunc("POST /activate/{token}", s.ActivateSubmit)
	mux.HandleFunc("POST /activate/{token}/{$}", s.ActivateSubmit)

	// Every role.
	mux.Handle("GET /{$}", all(s.Dashboard))
	mux.Handle("GET /requisitions", all(s.RequisitionsPage))
	mux.Handle("GET /requisitions/new", all(s.RequisitionNewPage))
	mux.Handle("POST /requisitions/new", all(s.RequisitionCreateSubmit))
	mux.Handle("GET /requisitions/{id}", all(s.RequisitionDetailPage))
	mux.Handle("GET /profile", all(s.ProfilePage))
	mux.Handle("POST /profile", all(s.ProfileSubmit))

	// Staff.
	mux.Handle("GET /inventory", staff(s.InventoryPage))
	mux.Handle("GET /inventory/new", staff(s.ItemNewPage))
	mux.Handle("POST /inventory/new", staff(s.ItemCreateSubmit))
	mux.Handle("GET /inventory/export.xlsx", staff(s.InventoryExport))
	mux.Handle("GET /inventory/labels", staff(s.LabelsPage))
	mux.Handle("GET /inventory/{id}/edit", staff(s.ItemEditPage))
	mux.Handle("POST /inventory/{id}/edit", staff(s.ItemUpdateSubmit))
	mux.Handle("GET /inventory/{id}/adjust", staff(s.ItemAdjustPage))
	mux.Handle("POST /inventory/{id}/adjust", staff(s.ItemAdjustSubmit))
	mux.Handle("GET /inventory/{id}/label", staff(s.LabelPage))
	mux.Handle("GET /inventory/{id}/barcode.png", staff(s.BarcodePNG))

	mux.Handle("GET /purchases", staff(s.PurchasesPage))
	mux.Handle("GET /purchases/new", staff(s.PurchaseNewPage))
	mux.Handle("POST /purchases/new", staff(s.PurchaseCreateSubmit))
	mux.Handle("GET /purchases/{id}", staff(s.PurchaseDetailPage))

	mux.Handle("GET /categories", staff(s.CategoriesPage))
	mux.Handle("POST /categories", staff(s.CategoryCreateSubmit))
	mux.Handle("POST /categories/{id}/delete", staff(s.CategoryDeleteSubmit))
	mux.Handle("GET /suppliers", staff(s.SuppliersPage))
	mux.Handle("POST /suppliers", staff(s.SupplierCreateSubmit))
	mux.Handle("POST /suppliers/{id}", staff(s.SupplierUpdateSubmit))

	// Admin.
	mux.Handle("GET /employees", admin(s.EmployeesPage))
	mux.Handle("GET /employees/new", admin(s.EmployeeNewPage))
	mux.Handle("POST /employees/new", admin(s.EmployeeCreateSubmit))
	mux.Handle("POST /employees/{id}/resend", admin(s.EmployeeResendSubmit))
	mux.Handle("POST /employees/{id}/deactivate", admin(s.EmployeeDeactivateSubmit))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users", admin(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}/role", admin(s.UserUpdateRoleSubmit))
	mux.Handle("POST /users/{id}/password", admin(s.UserResetPasswordSubmit))

	mux.Handle("GET /settings/logo", admin(s.LogoPage))
	mux.Handle("POST /settings/logo", admin(s.LogoSubmit))

	return ContextMiddleware(mux)
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
