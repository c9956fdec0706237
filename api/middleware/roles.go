package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/importops-backend/api/responses"
	"github.com/angelmondragon/importops-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/importops-backend/pkg/errors"
	"github.com/angelmondragon/importops-backend/pkg/logger"
)

// RequireRole admits operators whose token role is one of allowed. It must run
// after Auth; a request with no role at all is treated as unauthenticated.
func RequireRole(logg *logger.Logger, allowed ...enums.Role) func(http.Handler) http.Handler {
	names := make([]string, 0, len(allowed))
	for _, role := range allowed {
		names = append(names, role.String())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current := RoleFromContext(r.Context())
			if current == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !slices.Contains(allowed, enums.Role(current)) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role not permitted for this action").
					WithDetails(map[string]any{"role": current, "allowed": names}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
