package httpserver

import (
	"net/http"
	"strings"

	"github.com/fdg312/portion-planner/internal/config"
)

const (
	corsAllowMethods    = "GET,POST,OPTIONS"
	corsAllowHeaders    = "Content-Type,X-Request-ID"
	corsExposeHeaders   = "Content-Disposition,X-Plan-ID,X-Request-ID"
	corsPreflightMaxAge = "600"
)

// CORSMiddleware returns an http.Handler that adds CORS headers for the
// configured origins. Preflight requests are answered here.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		allowed[strings.TrimSpace(o)] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		ok := origin != "" && allowed[origin]

		if ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
			w.Header().Add("Vary", "Origin")
			if cfg.CORSAllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions && origin != "" {
			if ok {
				w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Max-Age", corsPreflightMaxAge)
			}
			// Disallowed origins get a bare 204; the browser blocks them.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
