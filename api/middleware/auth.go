package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/importops-backend/api/responses"
	pkgAuth "github.com/angelmondragon/importops-backend/pkg/auth"
	"github.com/angelmondragon/importops-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
)

// bearerToken accepts "Bearer <token>" with any scheme casing, or a bare
// token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}

// Auth verifies the operator JWT and seeds the actor on the request context
// and the logger.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			userID, role := claims.UserID.String(), claims.Role.String()
			ctx := WithRole(WithUserID(r.Context(), userID), role)
			if logg != nil {
				ctx = logg.WithActorRole(logg.WithUserID(ctx, userID), role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
