package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	valid, err := GenerateJWTToken("secret", "cli", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWTToken("secret", "cli", -time.Minute)
	require.NoError(t, err)
	foreign, err := GenerateJWTToken("other-secret", "cli", time.Hour)
	require.NoError(t, err)
	readOnly, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClientClaims{
		Scope:            "vacancies:read",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "cli"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		header string
		status int
	}{
		"valid token":     {header: "Bearer " + valid, status: http.StatusNoContent},
		"missing header":  {header: "", status: http.StatusUnauthorized},
		"wrong scheme":    {header: "Basic " + valid, status: http.StatusUnauthorized},
		"expired token":   {header: "Bearer " + expired, status: http.StatusUnauthorized},
		"wrong secret":    {header: "Bearer " + foreign, status: http.StatusUnauthorized},
		"read-only scope": {header: "Bearer " + readOnly, status: http.StatusForbidden},
		"garbage token":   {header: "Bearer not.a.token", status: http.StatusUnauthorized},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var client string
			handler := AuthMiddleware("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				client = GetClientFromContext(r.Context())
				w.WriteHeader(http.StatusNoContent)
			}))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusNoContent {
				assert.Equal(t, "cli", client)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}
