package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/almacen/internal/inventory"
	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// RequisitionsPage handles GET /requisitions. Users see their own
// requisitions; staff see everyone's and may filter by requester.
func (s *Server) RequisitionsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := s.actor(r)

	f := store.RequisitionFilter{RequestedBy: actor.UserID}
	if actor.Staff() {
		f.RequestedBy, _ = strconv.ParseInt(r.URL.Query().Get("requester"), 10, 64)
	}

	total, err := store.CountRequisitions(ctx, s.DB, f)
	if err != nil {
		s.serverError(w, r, "failed to count requisitions", err)
		return
	}
	pager := newPager(r, total)
	reqs, err := store.ListRequisitions(ctx, s.DB, f, pager.Store())
	if err != nil {
		s.serverError(w, r, "failed to list requisitions", err)
		return
	}

	data := &struct {
		PageData
		Requisitions []model.Requisition
		Users        []model.User
		RequesterID  int64
		Pager        *Pager
	}{
		PageData:     s.page(r, "Requisitions"),
		Requisitions: reqs,
		RequesterID:  f.RequestedBy,
		Pager:        pager,
	}

	if isPartial(r) {
		s.Templates.RenderPartial(w, "requisitions.html", "table", data)
		return
	}
	if actor.Staff() {
		if data.Users, err = store.ListUsers(ctx, s.DB); err != nil {
			s.serverError(w, r, "failed to list users", err)
			return
		}
	}
	s.Templates.Render(w, "requisitions.html", data)
}

type requisitionFormData struct {
	PageData
	Items       []model.InventoryItem
	RequestedAt string
	Note        string
	Lines       []formLine
}

// RequisitionNewPage handles GET /requisitions/new.
func (s *Server) RequisitionNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderRequisitionForm(w, r, http.StatusOK, &requisitionFormData{
		PageData:    s.page(r, "New requisition"),
		RequestedAt: s.Now().Format("2006-01-02"),
		Lines:       formLines(nil),
	})
}

// RequisitionCreateSubmit handles POST /requisitions/new.
func (s *Server) RequisitionCreateSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.errorPage(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	data := &requisitionFormData{
		PageData:    s.page(r, "New requisition"),
		RequestedAt: strings.TrimSpace(r.PostForm.Get("requested_at")),
		Note:        strings.TrimSpace(r.PostForm.Get("note")),
		Lines:       formLines(r.PostForm),
	}
	fail := func(msg string) {
		data.Error = msg
		s.renderRequisitionForm(w, r, http.StatusUnprocessableEntity, data)
	}

	requestedAt, err := formDate(data.RequestedAt)
	if err != nil {
		fail("Requisition date must be a valid date.")
		return
	}
	lines, err := inventory.RequisitionLinesFromForm(r.PostForm)
	if err != nil {
		msg, _ := userMessage(err)
		fail(msg)
		return
	}

	req, err := s.Inventory.CreateRequisition(r.Context(), s.actor(r), inventory.RequisitionInput{
		RequestedAt: requestedAt,
		Note:        data.Note,
		Lines:       lines,
	})
	if err != nil {
		if msg, ok := userMessage(err); ok {
			fail(msg)
			return
		}
		s.serverError(w, r, "failed to create requisition", err)
		return
	}

	slog.Info("requisition recorded", "user", GetWebClaims(r.Context()).Username,
		"requisition_id", req.ID, "lines", len(req.Lines))
	redirect(w, r, fmt.Sprintf("/requisitions/%d", req.ID), "success", fmt.Sprintf("Requisition #%d recorded.", req.ID))
}

func (s *Server) renderRequisitionForm(w http.ResponseWriter, r *http.Request, status int, data *requisitionFormData) {
	items, err := store.ListItems(r.Context(), s.DB, store.ItemFilter{ActiveOnly: true}, store.Page{})
	if err != nil {
		s.serverError(w, r, "failed to list items", err)
		return
	}
	data.Items = items
	s.Templates.RenderStatus(w, status, "requisition_new.html", data)
}

// RequisitionDetailPage handles GET /requisitions/{id}.
func (s *Server) RequisitionDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Requisition not found.")
		return
	}
	req, err := store.GetRequisition(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get requisition", err)
		return
	}
	if req == nil {
		s.errorPage(w, r, http.StatusNotFound, "Requisition not found.")
		return
	}
	if !s.actor(r).CanView(req) {
		s.errorPage(w, r, http.StatusForbidden, "You do not have access to this requisition.")
		return
	}
	s.Templates.Render(w, "requisition_detail.html", &struct {
		PageData
		Requisition *model.Requisition
	}{PageData: s.page(r, fmt.Sprintf("Requisition #%d", req.ID)), Requisition: req})
}
