package web

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/almacen/internal/api"
	"github.com/erazemk/almacen/internal/auth"
	"github.com/erazemk/almacen/internal/model"
)

type webContextKey string

const requestContextKey webContextKey = "request"

const (
	tokenCookie = "token"
	flashCookie = "flash"
)

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Kind string // "success", "warning" or "error"
	Msg  string
}

// RequestContext carries per-request state set by the web middleware.
type RequestContext struct {
	Claims *auth.Claims
	Token  string
	Flash  *Flash
}

func requestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestContextKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{}
}

// ContextMiddleware attaches a RequestContext to every request and consumes
// the pending flash message, if any.
func ContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := &RequestContext{}
		if c, err := r.Cookie(flashCookie); err == nil && c.Value != "" {
			rc.Flash = decodeFlash(c.Value)
			http.SetCookie(w, &http.Cookie{
				Name:     flashCookie,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestContextKey, rc)))
	})
}

// setFlash stores a message to show after the next redirect.
func setFlash(w http.ResponseWriter, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(kind + "\x00" + msg)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeFlash(v string) *Flash {
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "\x00")
	if !ok || msg == "" {
		return nil
	}
	switch kind {
	case "success", "warning", "error":
	default:
		return nil
	}
	return &Flash{Kind: kind, Msg: msg}
}

// redirect sets a flash message and redirects with 303.
func redirect(w http.ResponseWriter, r *http.Request, url, kind, msg string) {
	if msg != "" {
		setFlash(w, kind, msg)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// CookieAuthMiddleware validates the session cookie, checks revocation and
// account status, and stores the claims in the request context.
func CookieAuthMiddleware(secret string, db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(tokenCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			claims, err := api.Authenticate(r.Context(), db, secret, cookie.Value)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					slog.Error("failed to authenticate session", "error", err)
				}
				clearAuthCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			rc := requestContext(r.Context())
			rc.Claims = claims
			rc.Token = cookie.Value
			ctx := context.WithValue(r.Context(), requestContextKey, rc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetWebClaims retrieves the JWT claims from web context.
func GetWebClaims(ctx context.Context) *auth.Claims {
	return requestContext(ctx).Claims
}

// requireRole wraps h with session authentication and a minimum role.
func (s *Server) requireRole(minimum string, h http.HandlerFunc) http.Handler {
	return CookieAuthMiddleware(s.JWTSecret, s.DB)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !model.RoleAtLeast(GetWebClaims(r.Context()).Role, minimum) {
			s.errorPage(w, r, http.StatusForbidden, "You do not have access to this page.")
			return
		}
		h(w, r)
	}))
}

// isPartial reports whether the request asks for a page fragment.
func isPartial(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

// errorPage renders the error page with status.
func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	data := s.page(r, http.StatusText(status))
	data.Error = msg
	s.Templates.RenderStatus(w, status, "error.html", &struct {
		PageData
		Status int
	}{PageData: data, Status: status})
}

// serverError logs err and renders a generic error page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", api.RequestID(r.Context()))
	s.errorPage(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
