package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	// VisitorIDHeader lets API clients choose their visitor namespace.
	VisitorIDHeader = "X-Visitor-ID"
	// VisitorCookie is issued to browsers that arrive without an id.
	VisitorCookie = "visitor_id"

	visitorCookieMaxAge = 365 * 24 * time.Hour
)

type visitorKey struct{}

var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Visitor resolves the storefront visitor for every request: the
// X-Visitor-ID header wins, then the visitor_id cookie, otherwise a new id
// is generated and set as a cookie. Malformed ids are replaced.
func Visitor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(VisitorIDHeader)
			if !ValidVisitorID(id) {
				id = ""
				if c, err := r.Cookie(VisitorCookie); err == nil && ValidVisitorID(c.Value) {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(visitorCookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(VisitorIDHeader, id)
			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id)))
		})
	}
}

// ValidVisitorID reports whether id is usable as a storage namespace.
func ValidVisitorID(id string) bool {
	return visitorIDPattern.MatchString(id)
}

// WithVisitorID stores the visitor id in ctx.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorKey{}, id)
}

// VisitorIDFromContext returns the id stored by Visitor, or "".
func VisitorIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(visitorKey{}).(string); ok {
		return id
	}
	return ""
}

// NoStore marks responses as uncacheable. The HTML storefront is rendered
// per visitor and must never be shared by caches.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
