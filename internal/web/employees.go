package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/almacen/internal/employees"
	"github.com/erazemk/almacen/internal/model"
)

type employeeRow struct {
	model.Employee
	Status    string
	CanInvite bool
}

// EmployeesPage handles GET /employees.
func (s *Server) EmployeesPage(w http.ResponseWriter, r *http.Request) {
	list, err := s.Employees.List(r.Context())
	if err != nil {
		s.serverError(w, r, "failed to list employees", err)
		return
	}

	now := s.Now()
	rows := make([]employeeRow, len(list))
	for i := range list {
		e := &list[i]
		rows[i] = employeeRow{
			Employee:  *e,
			Status:    employees.Status(e, now),
			CanInvite: e.IsActive && !e.HasAccount(),
		}
	}

	s.Templates.Render(w, "employees.html", &struct {
		PageData
		Employees []employeeRow
	}{PageData: s.page(r, "Employees"), Employees: rows})
}

type employeeForm struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Position   string
	Department string
	HireDate   string
}

// EmployeeNewPage handles GET /employees/new.
func (s *Server) EmployeeNewPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "employee_new.html", &struct {
		PageData
		Form employeeForm
	}{PageData: s.page(r, "New employee")})
}

// EmployeeCreateSubmit handles POST /employees/new. The employee is kept
// even when the invitation cannot be delivered; the admin is warned and can
// resend it later.
func (s *Server) EmployeeCreateSubmit(w http.ResponseWriter, r *http.Request) {
	form := employeeForm{
		FirstName:  strings.TrimSpace(r.FormValue("first_name")),
		LastName:   strings.TrimSpace(r.FormValue("last_name")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		Phone:      strings.TrimSpace(r.FormValue("phone")),
		Position:   strings.TrimSpace(r.FormValue("position")),
		Department: strings.TrimSpace(r.FormValue("department")),
		HireDate:   strings.TrimSpace(r.FormValue("hire_date")),
	}
	fail := func(msg string) {
		data := s.page(r, "New employee")
		data.Error = msg
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "employee_new.html", &struct {
			PageData
			Form employeeForm
		}{PageData: data, Form: form})
	}

	in := employees.Input{
		FirstName:  form.FirstName,
		LastName:   form.LastName,
		Email:      form.Email,
		Phone:      form.Phone,
		Position:   form.Position,
		Department: form.Department,
	}
	hired, err := formDate(form.HireDate)
	if err != nil {
		fail("Hire date must be a valid date.")
		return
	}
	if !hired.IsZero() {
		in.HireDate = &hired
	}

	e, err := s.Employees.Create(r.Context(), in)
	var mailErr *employees.MailError
	switch {
	case errors.As(err, &mailErr):
		slog.Warn("invitation not delivered", "employee_id", mailErr.EmployeeID, "error", mailErr.Err)
		redirect(w, r, "/employees", "warning",
			fmt.Sprintf("Employee %s was saved, but the invitation email could not be sent.", e.FullName()))
		return
	case err != nil:
		if msg, ok := userMessage(err); ok {
			fail(msg)
			return
		}
		s.serverError(w, r, "failed to create employee", err)
		return
	}

	slog.Info("employee created", "user", GetWebClaims(r.Context()).Username, "employee_id", e.ID, "email", e.Email)
	redirect(w, r, "/employees", "success", fmt.Sprintf("Invitation sent to %s.", e.Email))
}

// EmployeeResendSubmit handles POST /employees/{id}/resend.
func (s *Server) EmployeeResendSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Employee not found.")
		return
	}

	e, err := s.Employees.ResendInvitation(r.Context(), id)
	var mailErr *employees.MailError
	switch {
	case errors.As(err, &mailErr):
		slog.Warn("invitation not delivered", "employee_id", id, "error", mailErr.Err)
		redirect(w, r, "/employees", "warning", "A new link was issued, but the invitation email could not be sent.")
	case errors.Is(err, employees.ErrNotFound):
		s.errorPage(w, r, http.StatusNotFound, "Employee not found.")
	case errors.Is(err, employees.ErrAlreadyActivated):
		redirect(w, r, "/employees", "error", "This employee already has an account.")
	case errors.Is(err, employees.ErrInactive):
		redirect(w, r, "/employees", "error", "This employee is inactive.")
	case err != nil:
		s.serverError(w, r, "failed to resend invitation", err)
	default:
		slog.Info("invitation resent", "user", GetWebClaims(r.Context()).Username, "employee_id", e.ID)
		redirect(w, r, "/employees", "success", fmt.Sprintf("Invitation sent to %s.", e.Email))
	}
}

// EmployeeDeactivateSubmit handles POST /employees/{id}/deactivate.
func (s *Server) EmployeeDeactivateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "Employee not found.")
		return
	}

	err := s.Employees.Deactivate(r.Context(), id)
	switch {
	case errors.Is(err, employees.ErrNotFound):
		s.errorPage(w, r, http.StatusNotFound, "Employee not found.")
	case err != nil:
		s.serverError(w, r, "failed to deactivate employee", err)
	default:
		slog.Info("employee deactivated", "user", GetWebClaims(r.Context()).Username, "employee_id", id)
		redirect(w, r, "/employees", "success", "Employee deactivated.")
	}
}

type activateData struct {
	PageData
	Employee *model.Employee
	Token    string
	Username string
}

// ActivatePage handles GET /activate/{token}/.
func (s *Server) ActivatePage(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	data := &activateData{PageData: s.page(r, "Activate account"), Token: token}

	e, err := s.Employees.Lookup(r.Context(), token)
	if err != nil {
		s.activationFailed(w, r, data, err)
		return
	}
	data.Employee = e
	data.Username = strings.SplitN(e.Email, "@", 2)[0]
	s.Templates.Render(w, "activate.html", data)
}

// ActivateSubmit handles POST /activate/{token}/. On success the new account
// is created and the user is sent to the login page.
func (s *Server) ActivateSubmit(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	data := &activateData{
		PageData: s.page(r, "Activate account"),
		Token:    token,
		Username: strings.TrimSpace(r.FormValue("username")),
	}

	user, err := s.Employees.Activate(r.Context(), token,
		data.Username, r.FormValue("password"), r.FormValue("confirm"))
	var verr *employees.ValidationError
	switch {
	case errors.As(err, &verr):
		// The form stays usable, so reload the employee for the greeting.
		if data.Employee, err = s.Employees.Lookup(r.Context(), token); err != nil {
			s.activationFailed(w, r, data, err)
			return
		}
		msg, _ := userMessage(verr)
		data.Error = msg
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "activate.html", data)
	case err != nil:
		s.activationFailed(w, r, data, err)
	default:
		slog.Info("account activated", "user", user.Username, "user_id", user.ID)
		redirect(w, r, "/login", "success", "Your account is ready. You can log in now.")
	}
}

func (s *Server) activationFailed(w http.ResponseWriter, r *http.Request, data *activateData, err error) {
	data.Employee = nil
	switch {
	case errors.Is(err, employees.ErrAlreadyActivated):
		data.Error = "This account has already been activated. You can log in."
		s.Templates.RenderStatus(w, http.StatusConflict, "activate.html", data)
	case errors.Is(err, employees.ErrTokenInvalid):
		data.Error = "This activation link is invalid or has expired. Ask an administrator for a new one."
		s.Templates.RenderStatus(w, http.StatusNotFound, "activate.html", data)
	default:
		s.serverError(w, r, "failed to activate account", err)
	}
}
