package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/calorie-diary/internal/config"
)

const (
	corsAllowMethods = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	corsAllowHeaders = "Authorization,Content-Type," + TimezoneHeader
	// Browsers hide Content-Disposition unless exposed; clients read the
	// backup and report filenames from it.
	corsExposeHeaders = "Content-Disposition,Retry-After"
)

// CORSMiddleware answers preflight requests and tags responses for allowed
// origins. "*" in CORS_ALLOWED_ORIGINS allows any origin (reflected, so it
// still works with credentials).
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}
	allowAny := allowed["*"]

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		ok := origin != "" && (allowAny || allowed[origin])

		if ok {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if cfg.CORSAllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method != http.MethodOptions || origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Disallowed origins get a bare 204 and the browser blocks the call.
		if ok {
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Max-Age", "600")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
