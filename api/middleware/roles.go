package middleware

import (
	"net/http"

	"github.com/horizoncoop/coopadmin-backend/api/responses"
	"github.com/horizoncoop/coopadmin-backend/internal/authz"
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
	"github.com/horizoncoop/coopadmin-backend/pkg/logger"
)

// RequireAction rejects requests whose staff role is not permitted to perform the action.
func RequireAction(action authz.Action, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.StaffRole(RoleFromContext(r.Context()))
			if !authz.IsAllowed(role, action) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role").WithDetails(map[string]any{
					"action": string(action),
				}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
