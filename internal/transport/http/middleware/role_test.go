package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-auth-api/internal/domain"
	jwtinfra "github.com/go-auth-api/internal/infrastructure/jwt"
)

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/create-user", nil)
	claims := &jwtinfra.Claims{UserID: "u1", Role: role, TokenType: jwtinfra.KindAccess}
	return req.WithContext(context.WithValue(req.Context(), ClaimsKey, claims))
}

func TestRequireRole_Allowed(t *testing.T) {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	RequireRole(domain.RoleAdmin)(next).ServeHTTP(rec, requestWithRole(domain.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	RequireRole(domain.RoleAdmin)(next).ServeHTTP(rec, requestWithRole(domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_AnyOfSeveral(t *testing.T) {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	RequireRole(domain.RoleAdmin, domain.RoleUser)(next).ServeHTTP(rec, requestWithRole(domain.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/create-user", nil)
	RequireRole(domain.RoleAdmin)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
