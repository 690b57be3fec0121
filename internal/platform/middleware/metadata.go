package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"downline/pkg/requestcontext"
)

// ClientMetadata records the client IP and a parsed User-Agent summary in the
// request context so registration logs can say what kind of client signed a
// member up.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		summary := ""
		if raw := r.Header.Get("User-Agent"); raw != "" {
			ua := useragent.New(raw)
			name, version := ua.Browser()
			summary = name + "/" + version + " (" + ua.OS() + ")"
			if ua.Bot() {
				summary += " bot"
			}
		}
		ctx := requestcontext.WithClientMetadata(r.Context(), clientIP(r), summary)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
