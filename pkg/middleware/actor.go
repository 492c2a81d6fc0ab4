package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/iota-facility/pkg/composables"
	"github.com/iota-uz/iota-facility/pkg/httpapi"
)

// ProvideActor copies the tenant and user resolved by the authenticating
// gateway into the request context. Requests without a valid tenant are rejected.
func ProvideActor(tenantHeader, userHeader string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(tenantHeader))
			tenantID, err := uuid.Parse(raw)
			if raw == "" || err != nil || tenantID == uuid.Nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "tenant is required", nil)
				return
			}
			ctx := composables.WithTenantID(r.Context(), tenantID)

			if v := strings.TrimSpace(r.Header.Get(userHeader)); v != "" {
				userID, err := strconv.ParseUint(v, 10, 64)
				if err != nil {
					_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user id", nil)
					return
				}
				ctx = composables.WithUserID(ctx, uint(userID))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
