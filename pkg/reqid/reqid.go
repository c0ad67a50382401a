// Package reqid tags every dashboard request with a unique ID.
//
// The ID travels in the request context and the X-Request-ID header, and
// logger.WithCtx(ctx) stamps it on every log line, so a single reservation
// submission can be followed through the handler, the feed broadcast, and
// any queued notification it triggers.
//
// The dashboard server wires it first, before the logging middleware:
//
//	r.Use(reqid.Middleware())
//	r.Use(middleware.Logger())
//
// A handler that needs the ID directly (e.g. to echo it in an error page):
//
//	id := reqid.FromCtx(r.Context())
package reqid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

type ctxKey struct{}

// Header is the HTTP header carrying the request ID.
const Header = "X-Request-ID"

// New returns a random 32-char hex ID.
func New() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithValue stores id in ctx.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the request ID stored in ctx, or "" if there is none.
func FromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Middleware assigns each request an ID and echoes it in the response
// header. An X-Request-ID sent by the client wins, so a curl session or a
// proxy in front of the dashboard can pick its own correlation value.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if id == "" {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
