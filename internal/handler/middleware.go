package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/pavelanni/testgen/internal/model"
	"github.com/pavelanni/testgen/internal/workspace"
)

const (
	workspaceCookieName = "workspace"
	csrfCookieName      = "csrf_token"
)

// formOverhead covers multipart boundaries and the small form fields sent
// alongside an uploaded file.
const formOverhead = 64 << 10

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

// BasePathMiddleware injects the configured base path into the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil && h.config.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes+formOverhead)
		}
		next.ServeHTTP(w, r)
	})
}

// workspaceMiddleware attaches the caller's workspace, creating one and
// setting its cookie when the browser has none or it has expired.
func (h *Handler) workspaceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ws *workspace.Workspace
		if cookie, err := r.Cookie(workspaceCookieName); err == nil && cookie.Value != "" {
			ws = h.workspaces.Get(cookie.Value)
		}
		if ws == nil {
			created, err := h.workspaces.Create()
			if err != nil {
				slog.Error("failed to create workspace", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			ws = created
			http.SetCookie(w, &http.Cookie{
				Name:     workspaceCookieName,
				Value:    ws.ID,
				Path:     h.cookiePath(),
				HttpOnly: true,
				Secure:   h.config.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			slog.Debug("created workspace", "workspaces", h.workspaces.Len())
		}
		next.ServeHTTP(w, r.WithContext(workspace.NewContext(r.Context(), ws)))
	})
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (h *Handler) setCSRFCookie(w http.ResponseWriter, r *http.Request, next http.Handler) {
	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: false,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	ctx := model.ContextWithCSRFToken(r.Context(), token)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// parseForm parses urlencoded and multipart bodies alike, keeping at most
// MaxUploadBytes of file data in memory.
func (h *Handler) parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(h.config.MaxUploadBytes)
	}
	return r.ParseForm()
}

func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			h.setCSRFCookie(w, r, next)
			return
		}

		if err := h.parseForm(r); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				slog.Warn("request body too large", "limit", tooLarge.Limit)
				http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			slog.Warn("CSRF cookie missing")
			http.Error(w, "csrf token missing", http.StatusForbidden)
			return
		}

		formToken := r.FormValue("csrf_token")
		if formToken == "" {
			slog.Warn("CSRF form token missing")
			http.Error(w, "csrf token missing", http.StatusForbidden)
			return
		}

		if len(formToken) != len(cookie.Value) || subtle.ConstantTimeCompare([]byte(formToken), []byte(cookie.Value)) != 1 {
			slog.Warn("CSRF token mismatch")
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}

		h.setCSRFCookie(w, r, next)
	})
}
