package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/almacen/internal/imaging"
	"github.com/erazemk/almacen/internal/store"
)

// LogoGet handles GET /logo. It is public so the login page and activation
// emails can show it.
func (s *Server) LogoGet(w http.ResponseWriter, r *http.Request) {
	logo, err := store.GetLogo(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load logo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if len(logo) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(logo)
}

// LogoPage handles GET /settings/logo.
func (s *Server) LogoPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "settings_logo.html", s.page(r, "Logo"))
}

// LogoSubmit handles POST /settings/logo. The upload is normalized to a
// small PNG before it is stored.
func (s *Server) LogoSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+4096)
	fail := func(msg string) {
		data := s.page(r, "Logo")
		data.Error = msg
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "settings_logo.html", data)
	}

	file, _, err := r.FormFile("logo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail("The image is too large. The limit is 2 MB.")
			return
		}
		fail("Choose an image to upload.")
		return
	}
	defer file.Close()

	png, err := imaging.ProcessLogo(file)
	if err != nil {
		if errors.Is(err, imaging.ErrTooLarge) {
			fail("The image is too large. The limit is 2 MB.")
			return
		}
		slog.Warn("rejected logo upload", "error", err)
		fail("The file is not a PNG or JPEG image.")
		return
	}

	if err := store.SetLogo(r.Context(), s.DB, png); err != nil {
		s.serverError(w, r, "failed to store logo", err)
		return
	}
	s.hasLogo.Store(true)

	slog.Info("logo updated", "user", GetWebClaims(r.Context()).Username, "bytes", len(png))
	redirect(w, r, "/settings/logo", "success", "Logo updated.")
}
