package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// CategoriesPage handles GET /categories.
func (s *Server) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list categories", err)
		return
	}
	s.Templates.Render(w, "categories.html", &struct {
		PageData
		Categories []model.Category
	}{PageData: s.page(r, "Categories"), Categories: categories})
}

// CategoryCreateSubmit handles POST /categories.
func (s *Server) CategoryCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirect(w, r, "/categories", "error", "Category name is required.")
		return
	}

	c, err := store.CreateCategory(r.Context(), s.DB, name)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			redirect(w, r, "/categories", "error", msg)
			return
		}
		s.serverError(w, r, "failed to create category", err)
		return
	}

	slog.Info("category created", "user", GetWebClaims(r.Context()).Username, "category", c.Name)
	redirect(w, r, "/categories", "success", fmt.Sprintf("Category %s created.", c.Name))
}

// CategoryDeleteSubmit handles POST /categories/{id}/delete. Categories that
// still hold items are kept.
func (s *Server) CategoryDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Category not found.")
		return
	}
	c, err := store.GetCategory(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get category", err)
		return
	}
	if c == nil {
		s.errorPage(w, r, http.StatusNotFound, "Category not found.")
		return
	}
	if c.ItemCount > 0 {
		redirect(w, r, "/categories", "error",
			fmt.Sprintf("Category %s still has items and cannot be deleted.", c.Name))
		return
	}

	if err := store.DeleteCategory(r.Context(), s.DB, id); err != nil {
		if msg, ok := userMessage(err); ok {
			redirect(w, r, "/categories", "error", msg)
			return
		}
		s.serverError(w, r, "failed to delete category", err)
		return
	}

	slog.Info("category deleted", "user", GetWebClaims(r.Context()).Username, "category", c.Name)
	redirect(w, r, "/categories", "success", fmt.Sprintf("Category %s deleted.", c.Name))
}

// SuppliersPage handles GET /suppliers.
func (s *Server) SuppliersPage(w http.ResponseWriter, r *http.Request) {
	suppliers, err := store.ListSuppliers(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list suppliers", err)
		return
	}
	s.Templates.Render(w, "suppliers.html", &struct {
		PageData
		Suppliers []model.Supplier
	}{PageData: s.page(r, "Suppliers"), Suppliers: suppliers})
}

func supplierName(r *http.Request) (string, string) {
	name := strings.TrimSpace(r.FormValue("name"))
	switch {
	case name == "":
		return "", "Supplier name is required."
	case len([]rune(name)) > model.MaxSupplierNameLength:
		return "", "Supplier name is too long."
	}
	return name, ""
}

// SupplierCreateSubmit handles POST /suppliers.
func (s *Server) SupplierCreateSubmit(w http.ResponseWriter, r *http.Request) {
	name, msg := supplierName(r)
	if msg != "" {
		redirect(w, r, "/suppliers", "error", msg)
		return
	}

	sup, err := store.CreateSupplier(r.Context(), s.DB, name)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			redirect(w, r, "/suppliers", "error", msg)
			return
		}
		s.serverError(w, r, "failed to create supplier", err)
		return
	}

	slog.Info("supplier created", "user", GetWebClaims(r.Context()).Username, "supplier", sup.Name)
	redirect(w, r, "/suppliers", "success", fmt.Sprintf("Supplier %s created.", sup.Name))
}

// SupplierUpdateSubmit handles POST /suppliers/{id}.
func (s *Server) SupplierUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Supplier not found.")
		return
	}
	sup, err := store.GetSupplier(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get supplier", err)
		return
	}
	if sup == nil {
		s.errorPage(w, r, http.StatusNotFound, "Supplier not found.")
		return
	}

	name, msg := supplierName(r)
	if msg != "" {
		redirect(w, r, "/suppliers", "error", msg)
		return
	}
	if err := store.UpdateSupplier(r.Context(), s.DB, id, name); err != nil {
		if msg, ok := userMessage(err); ok {
			redirect(w, r, "/suppliers", "error", msg)
			return
		}
		s.serverError(w, r, "failed to update supplier", err)
		return
	}

	slog.Info("supplier renamed", "user", GetWebClaims(r.Context()).Username, "from", sup.Name, "to", name)
	redirect(w, r, "/suppliers", "success", "Supplier saved.")
}
