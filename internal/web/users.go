package web

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	netmail "net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/almacen/internal/model"
	"github.com/erazemk/almacen/internal/store"
)

// UsersPage handles GET /users.
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list users", err)
		return
	}
	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
		Roles []string
	}{
		PageData: s.page(r, "Users"),
		Users:    users,
		Roles:    []string{model.RoleUser, model.RoleManager, model.RoleAdmin},
	})
}

// UserCreateSubmit handles POST /users. Accounts normally come from employee
// activation; this covers service and administrator accounts.
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := r.FormValue("role")

	switch {
	case username == "" || password == "":
		redirect(w, r, "/users", "error", "Username and password are required.")
		return
	case !model.ValidRole(role):
		redirect(w, r, "/users", "error", "Choose a valid role.")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		redirect(w, r, "/users", "error", capitalize(err.Error())+".")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.serverError(w, r, "failed to hash password", err)
		return
	}
	user, err := store.CreateUser(r.Context(), s.DB, username, string(hash), role)
	if errors.Is(err, store.ErrConflict) {
		redirect(w, r, "/users", "error", "That username is already taken.")
		return
	}
	if err != nil {
		s.serverError(w, r, "failed to create user", err)
		return
	}

	slog.Info("user created", "user", GetWebClaims(r.Context()).Username, "new_user", user.Username, "role", role)
	redirect(w, r, "/users", "success", fmt.Sprintf("User %s created.", user.Username))
}

// UserUpdateRoleSubmit handles POST /users/{id}/role.
func (s *Server) UserUpdateRoleSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	claims := GetWebClaims(r.Context())
	role := r.FormValue("role")

	switch {
	case !model.ValidRole(role):
		redirect(w, r, "/users", "error", "Choose a valid role.")
		return
	case user.ID == claims.UserID && role != model.RoleAdmin:
		redirect(w, r, "/users", "error", "You cannot remove your own administrator role.")
		return
	}

	if err := store.UpdateUser(r.Context(), s.DB, user.ID, role); err != nil {
		s.serverError(w, r, "failed to update user role", err)
		return
	}

	slog.Info("user role updated", "user", claims.Username, "target_user", user.Username, "new_role", role)
	redirect(w, r, "/users", "success", fmt.Sprintf("%s is now %s.", user.DisplayName(), role))
}

// UserResetPasswordSubmit handles POST /users/{id}/password.
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	password := r.FormValue("new_password")
	if err := model.ValidatePassword(password); err != nil {
		redirect(w, r, "/users", "error", capitalize(err.Error())+".")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.serverError(w, r, "failed to hash password", err)
		return
	}
	if err := store.UpdateUserPassword(r.Context(), s.DB, user.ID, string(hash)); err != nil {
		s.serverError(w, r, "failed to reset password", err)
		return
	}

	slog.Info("user password reset", "user", GetWebClaims(r.Context()).Username, "target_user", user.Username)
	redirect(w, r, "/users", "success", fmt.Sprintf("Password for %s reset.", user.Username))
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, ok := pathID(r)
	if !ok {
		s.errorPage(w, r, http.StatusNotFound, "User not found.")
		return nil, false
	}
	user, err := store.GetUser(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get user", err)
		return nil, false
	}
	if user == nil || user.DeletedAt != nil {
		s.errorPage(w, r, http.StatusNotFound, "User not found.")
		return nil, false
	}
	return user, true
}

type profileData struct {
	PageData
	Profile *model.User
}

// ProfilePage handles GET /profile.
func (s *Server) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(r.Context(), s.DB, GetWebClaims(r.Context()).UserID)
	if err != nil || user == nil {
		s.serverError(w, r, "failed to load profile", err)
		return
	}
	s.Templates.Render(w, "profile.html", &profileData{PageData: s.page(r, "Profile"), Profile: user})
}

// ProfileSubmit handles POST /profile. Names and email are always saved; the
// password changes only when a new one is given along with the current one.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := GetWebClaims(ctx)
	user, err := store.GetUser(ctx, s.DB, claims.UserID)
	if err != nil || user == nil {
		s.serverError(w, r, "failed to load profile", err)
		return
	}

	user.FirstName = strings.TrimSpace(r.FormValue("first_name"))
	user.LastName = strings.TrimSpace(r.FormValue("last_name"))
	user.Email = strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	fail := func(msg string) {
		data := &profileData{PageData: s.page(r, "Profile"), Profile: user}
		data.Error = msg
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "profile.html", data)
	}

	if user.Email != "" {
		if _, err := netmail.ParseAddress(user.Email); err != nil {
			fail("Email is not a valid address.")
			return
		}
	}

	var hash []byte
	if next != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
			fail("Current password is incorrect.")
			return
		}
		if err := model.ValidatePassword(next); err != nil {
			fail(capitalize(err.Error()) + ".")
			return
		}
		if next != r.FormValue("confirm_password") {
			fail("New passwords do not match.")
			return
		}
		if hash, err = bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost); err != nil {
			s.serverError(w, r, "failed to hash password", err)
			return
		}
	}

	err = store.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		if err := store.UpdateUserProfile(ctx, tx, user.ID, user.FirstName, user.LastName, user.Email); err != nil {
			return err
		}
		if hash != nil {
			return store.UpdateUserPassword(ctx, tx, user.ID, string(hash))
		}
		return nil
	})
	if err != nil {
		s.serverError(w, r, "failed to update profile", err)
		return
	}

	slog.Info("profile updated", "user", claims.Username, "password_changed", hash != nil)
	redirect(w, r, "/profile", "success", "Profile saved.")
}
