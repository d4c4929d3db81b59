package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"

	apierrors "campkit/internal/errors"
)

// CSRFHeader is where browsers echo the token
const CSRFHeader = "X-CSRF-Token"

// CSRF protects state-changing requests with a double-submit token.
// authKey must be 32 bytes.
func CSRF(authKey []byte, secure bool, trustedOrigins []string, errs *apierrors.ErrorHandler, logger *slog.Logger) func(http.Handler) http.Handler {
	failure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "unknown"
		if err := csrf.FailureReason(r); err != nil {
			reason = err.Error()
		}
		logger.WarnContext(r.Context(), "csrf check failed",
			slog.String("path", r.URL.Path),
			slog.String("reason", reason))
		errs.HandleError(w, r, apierrors.New(http.StatusForbidden, "FORBIDDEN", "CSRF token missing or invalid"))
	})

	return csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(originHosts(trustedOrigins)),
		csrf.ErrorHandler(failure),
	)
}

// CSRFToken exposes the token for the current request in a response header
func CSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(CSRFHeader, csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// originHosts reduces "scheme://host" origins to the bare hosts csrf compares
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
			continue
		}
		hosts = append(hosts, o)
	}
	return hosts
}
