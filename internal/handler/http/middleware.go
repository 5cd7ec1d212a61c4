package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/vasiliy-maslov/delivery-api/internal/account"
	"github.com/vasiliy-maslov/delivery-api/internal/auth"
)

// Authenticator resolves an Authorization header to the calling account.
type Authenticator interface {
	Authenticate(ctx context.Context, authorizationHeader string) (*account.Account, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller on the request context.
func RequireAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc, err := authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				respondWithServiceError(w, r, err, "authenticate request")
				return
			}

			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Int64("account_id", acc.ID)
			})
			next.ServeHTTP(w, r.WithContext(auth.WithAccount(r.Context(), acc)))
		})
	}
}

// accessLog attaches logger to every request and writes one line per
// response, tagged with the chi request id.
func accessLog(logger zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(logger),
		hlog.MethodHandler("method"),
		hlog.URLHandler("url"),
		hlog.RemoteAddrHandler("ip"),
		hlog.UserAgentHandler("user_agent"),
		requestIDField,
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			event := hlog.FromRequest(r).Info()
			if status >= http.StatusInternalServerError {
				event = hlog.FromRequest(r).Error()
			}
			event.
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request completed")
		}),
	}
}

func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", reqID)
			})
		}
		next.ServeHTTP(w, r)
	})
}
