package i18n

import "net/http"

// Middleware injects a localizer into every request context. A fixed
// language serves every request; Auto negotiates from Accept-Language.
func Middleware(lang string) func(http.Handler) http.Handler {
	if lang != Auto {
		loc := NewLocalizer(lang)
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
			})
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := NewLocalizer(r.Header.Get("Accept-Language"), Languages[0].String())
			w.Header().Add("Vary", "Accept-Language")
			next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), loc)))
		})
	}
}
