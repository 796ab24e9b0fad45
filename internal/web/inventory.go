package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/almacen/internal/export"
	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/labels"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// itemForm holds the submitted item fields so a rejected form can be shown
// again as typed.
type itemForm struct {
	SKU          string
	Slug         string
	CategoryID   int64
	Description  string
	MinStock     string
	MaxStock     string
	OpeningStock string
	Active       bool
}

func itemFormFrom(item *model.InventoryItem) itemForm {
	return itemForm{
		SKU:         item.SKU,
		Slug:        item.Slug,
		CategoryID:  item.CategoryID,
		Description: item.Description,
		MinStock:    strconv.Itoa(item.MinStock),
		MaxStock:    strconv.Itoa(item.MaxStock),
		Active:      item.Active,
	}
}

func parseItemForm(r *http.Request) itemForm {
	categoryID, _ := strconv.ParseInt(r.FormValue("category"), 10, 64)
	return itemForm{
		SKU:          strings.TrimSpace(r.FormValue("sku")),
		Slug:         strings.TrimSpace(r.FormValue("slug")),
		CategoryID:   categoryID,
		Description:  strings.TrimSpace(r.FormValue("description")),
		MinStock:     strings.TrimSpace(r.FormValue("min_stock")),
		MaxStock:     strings.TrimSpace(r.FormValue("max_stock")),
		OpeningStock: strings.TrimSpace(r.FormValue("opening_stock")),
		Active:       r.FormValue("active") != "",
	}
}

// item converts the form into a catalog item. Numeric fields that do not
// parse are reported by name.
func (f itemForm) item() (model.InventoryItem, string) {
	item := model.InventoryItem{
		SKU:         f.SKU,
		Slug:        f.Slug,
		CategoryID:  f.CategoryID,
		Description: f.Description,
		Active:      f.Active,
	}
	var err error
	if item.MinStock, err = atoiOrZero(f.MinStock); err != nil {
		return item, "Minimum stock must be a whole number."
	}
	if item.MaxStock, err = atoiOrZero(f.MaxStock); err != nil {
		return item, "Maximum stock must be a whole number."
	}
	return item, ""
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

type itemFormData struct {
	PageData
	Item       *model.InventoryItem
	Form       itemForm
	Categories []model.Category
	New        bool
}

func (s *Server) itemFilter(r *http.Request) (store.ItemFilter, int64) {
	q := r.URL.Query()
	categoryID, _ := strconv.ParseInt(q.Get("category"), 10, 64)
	return store.ItemFilter{
		Search:     strings.TrimSpace(q.Get("q")),
		CategoryID: categoryID,
	}, categoryID
}

// InventoryPage handles GET /inventory.
func (s *Server) InventoryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, categoryID := s.itemFilter(r)

	total, err := store.CountItems(ctx, s.DB, f)
	if err != nil {
		s.serverError(w, r, "failed to count items", err)
		return
	}
	pager := newPager(r, total)
	items, err := store.ListItems(ctx, s.DB, f, pager.Store())
	if err != nil {
		s.serverError(w, r, "failed to list items", err)
		return
	}

	data := &struct {
		PageData
		Items      []model.InventoryItem
		Categories []model.Category
		Search     string
		CategoryID int64
		Pager      *Pager
	}{
		PageData:   s.page(r, "Inventory"),
		Items:      items,
		Search:     f.Search,
		CategoryID: categoryID,
		Pager:      pager,
	}

	if isPartial(r) {
		s.Templates.RenderPartial(w, "inventory.html", "table", data)
		return
	}
	if data.Categories, err = store.ListCategories(ctx, s.DB); err != nil {
		s.serverError(w, r, "failed to list categories", err)
		return
	}
	s.Templates.Render(w, "inventory.html", data)
}

// InventoryExport handles GET /inventory/export.xlsx. It honours the same
// filters as the list but ignores paging.
func (s *Server) InventoryExport(w http.ResponseWriter, r *http.Request) {
	f, _ := s.itemFilter(r)
	items, err := store.ListItems(r.Context(), s.DB, f, store.Page{})
	if err != nil {
		s.serverError(w, r, "failed to list items for export", err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="inventory-%s.xlsx"`, s.Now().Format("2006-01-02")))
	if err := export.WriteInventory(w, items); err != nil {
		slog.Error("failed to write inventory export", "error", err)
	}
}

// ItemNewPage handles GET /inventory/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderItemForm(w, r, http.StatusOK, &itemFormData{
		PageData: s.page(r, "New item"),
		Form:     itemForm{Active: true},
		New:      true,
	})
}

// ItemCreateSubmit handles POST /inventory/new.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	form := parseItemForm(r)
	data := &itemFormData{PageData: s.page(r, "New item"), Form: form, New: true}

	item, msg := form.item()
	opening, err := atoiOrZero(form.OpeningStock)
	if msg == "" && err != nil {
		msg = "Opening stock must be a whole number."
	}
	if msg != "" {
		data.Error = msg
		s.renderItemForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	created, err := s.Inventory.CreateItem(r.Context(), item, opening)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			data.Error = msg
			s.renderItemForm(w, r, http.StatusUnprocessableEntity, data)
			return
		}
		s.serverError(w, r, "failed to create item", err)
		return
	}

	slog.Info("item created", "user", GetWebClaims(r.Context()).Username, "sku", created.SKU, "opening_stock", opening)
	redirect(w, r, "/inventory", "success", fmt.Sprintf("Item %s created.", created.SKU))
}

// ItemEditPage handles GET /inventory/{id}/edit.
func (s *Server) ItemEditPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	s.renderItemForm(w, r, http.StatusOK, &itemFormData{
		PageData: s.page(r, "Edit "+item.SKU),
		Item:     item,
		Form:     itemFormFrom(item),
	})
}

// ItemUpdateSubmit handles POST /inventory/{id}/edit. Stock is changed only
// through the ledger, never here.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	form := parseItemForm(r)
	data := &itemFormData{PageData: s.page(r, "Edit "+existing.SKU), Item: existing, Form: form}

	item, msg := form.item()
	if msg == "" {
		if err := inventory.ValidateItem(&item); err != nil {
			msg, _ = userMessage(err)
		}
	}
	if msg != "" {
		data.Error = msg
		s.renderItemForm(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	item.ID = existing.ID
	if err := store.UpdateItem(r.Context(), s.DB, &item); err != nil {
		if msg, ok := userMessage(err); ok {
			data.Error = msg
			s.renderItemForm(w, r, http.StatusUnprocessableEntity, data)
			return
		}
		s.serverError(w, r, "failed to update item", err)
		return
	}

	slog.Info("item updated", "user", GetWebClaims(r.Context()).Username, "item_id", item.ID, "sku", item.SKU)
	redirect(w, r, "/inventory", "success", fmt.Sprintf("Item %s saved.", item.SKU))
}

func (s *Server) renderItemForm(w http.ResponseWriter, r *http.Request, status int, data *itemFormData) {
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list categories", err)
		return
	}
	data.Categories = categories
	s.Templates.RenderStatus(w, status, "item_form.html", data)
}

type adjustData struct {
	PageData
	Item  *model.InventoryItem
	Delta string
	Note  string
}

// ItemAdjustPage handles GET /inventory/{id}/adjust.
func (s *Server) ItemAdjustPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	s.Templates.Render(w, "item_adjust.html", &adjustData{
		PageData: s.page(r, "Adjust "+item.SKU),
		Item:     item,
	})
}

// ItemAdjustSubmit handles POST /inventory/{id}/adjust.
func (s *Server) ItemAdjustSubmit(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	data := &adjustData{
		PageData: s.page(r, "Adjust "+item.SKU),
		Item:     item,
		Delta:    strings.TrimSpace(r.FormValue("delta")),
		Note:     strings.TrimSpace(r.FormValue("note")),
	}
	fail := func(msg string) {
		data.Error = msg
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "item_adjust.html", data)
	}

	delta, err := strconv.Atoi(data.Delta)
	if err != nil {
		fail("Quantity must be a whole number, negative to remove stock.")
		return
	}

	_, stock, err := s.Inventory.Adjust(r.Context(), inventory.AdjustInput{ItemID: item.ID, Delta: delta, Note: data.Note})
	if err != nil {
		if msg, ok := userMessage(err); ok {
			fail(msg)
			return
		}
		s.serverError(w, r, "failed to adjust stock", err)
		return
	}

	slog.Info("stock adjusted", "user", GetWebClaims(r.Context()).Username, "sku", item.SKU, "delta", delta, "stock", stock)
	redirect(w, r, "/inventory", "success", fmt.Sprintf("Stock of %s is now %d.", item.SKU, stock))
}

// LabelPage handles GET /inventory/{id}/label.
func (s *Server) LabelPage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	s.Templates.RenderStandalone(w, "labels.html", &struct {
		Title string
		Items []model.InventoryItem
	}{Title: item.SKU, Items: []model.InventoryItem{*item}})
}

// LabelsPage handles GET /inventory/labels?ids=1,2,3 and prints one label
// per selected item.
func (s *Server) LabelsPage(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	for _, v := range r.URL.Query()["ids"] {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil && id > 0 {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		redirect(w, r, "/inventory", "warning", "Select at least one item to print labels.")
		return
	}

	items, err := store.ListItems(r.Context(), s.DB, store.ItemFilter{IDs: ids}, store.Page{})
	if err != nil {
		s.serverError(w, r, "failed to list items for labels", err)
		return
	}
	s.Templates.RenderStandalone(w, "labels.html", &struct {
		Title string
		Items []model.InventoryItem
	}{Title: "Labels", Items: items})
}

// BarcodePNG handles GET /inventory/{id}/barcode.png.
func (s *Server) BarcodePNG(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if err := labels.WritePNG(w, item.SKU); err != nil {
		slog.Error("failed to render barcode", "sku", item.SKU, "error", err)
	}
}

func (s *Server) loadItem(w http.ResponseWriter, r *http.Request) (*model.InventoryItem, bool) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Item not found.")
		return nil, false
	}
	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get item", err)
		return nil, false
	}
	if item == nil {
		s.errorPage(w, r, http.StatusNotFound, "Item not found.")
		return nil, false
	}
	return item, true
}
