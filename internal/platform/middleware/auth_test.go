package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trellis/internal/platform/logger"
	"trellis/pkg/domain"
)

type staticValidator struct {
	caller domain.Address
	err    error
}

func (v staticValidator) ValidateToken(string) (domain.Address, error) {
	return v.caller, v.err
}

func TestRequireAuth(t *testing.T) {
	log := logger.New()

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetCaller(r.Context()).String()))
	})

	t.Run("valid bearer token reaches the handler with caller set", func(t *testing.T) {
		mw := RequireAuth(staticValidator{caller: domain.Address("owner")}, log)
		req := httptest.NewRequest(http.MethodPost, "/token/mint", nil)
		req.Header.Set("Authorization", "Bearer any")
		rec := httptest.NewRecorder()

		mw(capture).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "owner", rec.Body.String())
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		mw := RequireAuth(staticValidator{caller: domain.Address("owner")}, log)
		req := httptest.NewRequest(http.MethodPost, "/token/mint", nil)
		rec := httptest.NewRecorder()

		mw(capture).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		mw := RequireAuth(staticValidator{err: errors.New("bad signature")}, log)
		req := httptest.NewRequest(http.MethodPost, "/token/mint", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()

		mw(capture).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetCallerDefaultsToZero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	assert.Equal(t, domain.Zero, GetCaller(req.Context()))
}
