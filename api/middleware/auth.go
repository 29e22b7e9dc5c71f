package middleware

import (
	"net/http"
	"strings"

	"github.com/dispatchline/delivery-console/api/responses"
	pkgAuth "github.com/dispatchline/delivery-console/pkg/auth"
	"github.com/dispatchline/delivery-console/pkg/config"
	pkgerrors "github.com/dispatchline/delivery-console/pkg/errors"
	"github.com/dispatchline/delivery-console/pkg/logger"
	"github.com/dispatchline/delivery-console/pkg/outbox"
)

// Auth validates an operator bearer token and seeds the request context with
// its claims. With no secret configured every request passes through.
func Auth(cfg config.AuthConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if strings.TrimSpace(claims.OperatorID) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing operator id"))
				return
			}

			ctx := WithOperator(r.Context(), claims.OperatorID, claims.Role)
			ctx = outbox.WithActor(ctx, outbox.ActorRef{OperatorID: claims.OperatorID, Role: claims.Role.String()})
			if logg != nil {
				ctx = logg.WithOperator(ctx, claims.OperatorID)
				ctx = logg.WithField(ctx, "operator_role", claims.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
