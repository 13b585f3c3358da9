package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newhope/newhope-admin/internal/shared"
)

var admin = shared.AuthContext{UserID: "admin@newhope.vn", Email: "admin@newhope.vn", Role: shared.RoleAdmin}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	raw, expires, err := m.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, admin, got)
}

func TestTokenRejectsForeignSignatureAndExpiry(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	raw, _, err := NewTokenManager("other", time.Hour).Issue(admin)
	require.NoError(t, err)
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	past := time.Now().Add(-2 * time.Hour)
	old := NewTokenManager("secret", time.Minute)
	old.now = func() time.Time { return past }
	raw, _, err = old.Issue(admin)
	require.NoError(t, err)
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: tokenIssuer}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(unsigned)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestRequireAPIAdmin(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "admin@newhope.vn", shared.AuthFromContext(r.Context()).Email)
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAPIAdmin(m)(ok)

	adminToken, _, err := m.Issue(admin)
	require.NoError(t, err)
	staffToken, _, err := m.Issue(shared.AuthContext{UserID: "s@x.vn", Email: "s@x.vn", Role: shared.RoleStaff})
	require.NoError(t, err)

	cases := map[string]int{
		"":                     http.StatusUnauthorized,
		"Bearer garbage":       http.StatusUnauthorized,
		"Basic abc":            http.StatusUnauthorized,
		"Bearer " + staffToken: http.StatusForbidden,
		"bearer " + adminToken: http.StatusNoContent,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/status", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		h.ServeHTTP(res, req)
		if res.Code != want {
			t.Fatalf("header %q: expected %d, got %d", header, want, res.Code)
		}
	}
}

func TestRequireAdminRedirects(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, loginPath, res.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req = req.WithContext(shared.ContextWithAuth(req.Context(), admin))
	res = httptest.NewRecorder()
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}
