package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-facility/pkg/composables"
)

func TestProvideActor(t *testing.T) {
	tenantID := uuid.New()

	var gotTenant uuid.UUID
	var gotUser uint
	var userErr error
	h := ProvideActor("X-Tenant-ID", "X-User-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant, _ = composables.UseTenantID(r.Context())
		gotUser, userErr = composables.UseUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("tenant and user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tiers/create-pp", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		req.Header.Set("X-User-ID", "12")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, tenantID, gotTenant)
		require.NoError(t, userErr)
		require.Equal(t, uint(12), gotUser)
	})

	t.Run("tenant only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tiers/create-pp", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.ErrorIs(t, userErr, composables.ErrNoUserID)
	})

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "not-a-uuid",
		"nil":     uuid.Nil.String(),
	} {
		t.Run("rejects "+name+" tenant", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tiers/create-pp", nil)
			if header != "" {
				req.Header.Set("X-Tenant-ID", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}

	t.Run("rejects malformed user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tiers/create-pp", nil)
		req.Header.Set("X-Tenant-ID", tenantID.String())
		req.Header.Set("X-User-ID", "-3")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
