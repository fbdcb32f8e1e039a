package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/domain"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) InitiateLogin(ctx context.Context, req auth.LoginRequest) (*domain.Credential, error) {
	args := m.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*domain.Credential), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) CompleteLogin(ctx context.Context, req auth.VerifyOtpRequest) (*auth.TokenPair, error) {
	args := m.Called(ctx, req)
	if p := args.Get(0); p != nil {
		return p.(*auth.TokenPair), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) ResendOtp(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}
func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.AccessTokenResult, error) {
	args := m.Called(ctx, refreshToken)
	if r := args.Get(0); r != nil {
		return r.(*auth.AccessTokenResult), args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}
func (m *mockAuthService) RevokeAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func postJSON(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h(rec, req)
	return rec
}

// --- Login ---

func TestLogin_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("InitiateLogin", mock.Anything, auth.LoginRequest{Identifier: "alice", Password: "secret"}).
		Return(&domain.Credential{CredentialID: "c1"}, nil)

	rec := postJSON(t, NewAuthHandler(svc).Login, "/v1/auth/login",
		`{"identifier":"alice","password":"secret"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "otp sent to registered email", env.Message)
}

func TestLogin_BadJSON(t *testing.T) {
	rec := postJSON(t, NewAuthHandler(&mockAuthService{}).Login, "/v1/auth/login", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	rec := postJSON(t, NewAuthHandler(&mockAuthService{}).Login, "/v1/auth/login",
		`{"identifier":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("InitiateLogin", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)

	rec := postJSON(t, NewAuthHandler(svc).Login, "/v1/auth/login",
		`{"identifier":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_SuspendedAccount(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("InitiateLogin", mock.Anything, mock.Anything).Return(nil, domain.ErrAccountSuspended)

	rec := postJSON(t, NewAuthHandler(svc).Login, "/v1/auth/login",
		`{"identifier":"alice","password":"secret"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// --- VerifyOtp ---

func TestVerifyOtp_ReturnsTokenPair(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("CompleteLogin", mock.Anything, auth.VerifyOtpRequest{Identifier: "alice", Otp: "4821"}).
		Return(&auth.TokenPair{
			AccessToken:  "access.jwt",
			RefreshToken: "refresh.jwt",
			TokenType:    "Bearer",
			ExpiresIn:    86400,
		}, nil)

	rec := postJSON(t, NewAuthHandler(svc).VerifyOtp, "/v1/auth/verify-otp",
		`{"identifier":"alice","otp":"4821"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var pair auth.TokenPair
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pair))
	assert.Equal(t, "access.jwt", pair.AccessToken)
	assert.Equal(t, "refresh.jwt", pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(86400), pair.ExpiresIn)
}

func TestVerifyOtp_WrongCode(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("CompleteLogin", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidOrExpiredOtp)

	rec := postJSON(t, NewAuthHandler(svc).VerifyOtp, "/v1/auth/verify-otp",
		`{"identifier":"alice","otp":"0000"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- ResendOtp ---

func TestResendOtp_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResendOtp", mock.Anything, "alice").Return(nil)

	rec := postJSON(t, NewAuthHandler(svc).ResendOtp, "/v1/auth/resend-otp",
		`{"identifier":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResendOtp_Throttled(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResendOtp", mock.Anything, "alice").Return(domain.ErrOtpResendThrottled)

	rec := postJSON(t, NewAuthHandler(svc).ResendOtp, "/v1/auth/resend-otp",
		`{"identifier":"alice"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestResendOtp_MissingIdentifier(t *testing.T) {
	rec := postJSON(t, NewAuthHandler(&mockAuthService{}).ResendOtp, "/v1/auth/resend-otp", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Refresh ---

func TestRefresh_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "refresh.jwt").
		Return(&auth.AccessTokenResult{AccessToken: "new.jwt", TokenType: "Bearer", ExpiresIn: 86400}, nil)

	rec := postJSON(t, NewAuthHandler(svc).Refresh, "/v1/auth/refresh-token",
		`{"refresh_token":"refresh.jwt"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var res auth.AccessTokenResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, "new.jwt", res.AccessToken)
}

func TestRefresh_RevokedToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "refresh.jwt").Return(nil, domain.ErrTokenRevoked)

	rec := postJSON(t, NewAuthHandler(svc).Refresh, "/v1/auth/refresh-token",
		`{"refresh_token":"refresh.jwt"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_MissingToken(t *testing.T) {
	rec := postJSON(t, NewAuthHandler(&mockAuthService{}).Refresh, "/v1/auth/refresh-token", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Logout ---

func TestLogout_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Logout", mock.Anything, "refresh.jwt").Return(nil)

	rec := postJSON(t, NewAuthHandler(svc).Logout, "/v1/auth/logout",
		`{"refresh_token":"refresh.jwt"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
