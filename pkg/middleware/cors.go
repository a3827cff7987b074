package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/cafe/config"
)

type CORSOptions struct {
	// AllowedOrigins holds exact origins, or "*" for any.
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSOptions allows any origin without credentials.
func DefaultCORSOptions() CORSOptions {
	return CORSOptions{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}
}

// CORSFromConfig narrows the defaults with CORS_ALLOWED_ORIGINS, a comma
// list. Naming origins turns credentials on so the session cookie works
// cross-site.
func CORSFromConfig() CORSOptions {
	opts := DefaultCORSOptions()
	origins := config.List("CORS_ALLOWED_ORIGINS", []string{"*"})
	if slices.Contains(origins, "*") {
		return opts
	}
	opts.AllowedOrigins = make([]string, len(origins))
	for i, o := range origins {
		opts.AllowedOrigins[i] = strings.TrimRight(o, "/")
	}
	opts.AllowCredentials = true
	return opts
}

func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")
	exposed := strings.Join(opts.ExposedHeaders, ", ")
	anyOrigin := slices.Contains(opts.AllowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()
			h.Add("Vary", "Origin")

			if origin != "" {
				switch {
				case anyOrigin && !opts.AllowCredentials:
					h.Set("Access-Control-Allow-Origin", "*")
				case anyOrigin || slices.Contains(opts.AllowedOrigins, origin):
					h.Set("Access-Control-Allow-Origin", origin)
					if opts.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
				default:
					origin = ""
				}
			}
			if origin != "" && exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if origin != "" {
					h.Set("Access-Control-Allow-Methods", methods)
					h.Set("Access-Control-Allow-Headers", headers)
					if opts.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(opts.MaxAge))
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
