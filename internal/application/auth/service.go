package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	jwtinfra "github.com/go-auth-api/internal/infrastructure/jwt"
	"github.com/go-auth-api/internal/pkg/clock"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"` // email or username
	Password   string `json:"password" validate:"required"`
}

type VerifyOtpRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Otp        string `json:"otp" validate:"required"`
}

// TokenPair is the terminal result of a completed two-factor login.
type TokenPair struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"` // seconds
	User         *domain.Profile `json:"user"`
}

// AccessTokenResult is the refresh outcome: a new access token only, the
// refresh token is not rotated.
type AccessTokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type credentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type roleStore interface {
	Get(ctx context.Context, roleID string) (*domain.Role, error)
}

type refreshTokenLedger interface {
	Put(ctx context.Context, t *domain.RefreshToken) error
	Get(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllByUser(ctx context.Context, userID string) error
}

type otpChallenger interface {
	Issue(ctx context.Context, cred *domain.Credential) error
	Verify(ctx context.Context, cred *domain.Credential, code string) (bool, error)
	CanResend(cred *domain.Credential) bool
}

type tokenCodec interface {
	SignAccess(userID, role string) (string, error)
	SignRefresh(userID string) (token string, expiresAt time.Time, err error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
	AccessTTL() time.Duration
}

// Service is the login state machine: password factor, OTP factor, token
// issuance, refresh and logout. Each call is stateless; the two login
// steps are tied together only by the identifier and the OTP stored on
// the credential row.
type Service interface {
	InitiateLogin(ctx context.Context, req LoginRequest) (*domain.Credential, error)
	CompleteLogin(ctx context.Context, req VerifyOtpRequest) (*TokenPair, error)
	ResendOtp(ctx context.Context, identifier string) error
	Refresh(ctx context.Context, refreshToken string) (*AccessTokenResult, error)
	Logout(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID string) error
}

type service struct {
	credentialRepo credentialStore
	userRepo       userStore
	roleRepo       roleStore
	ledger         refreshTokenLedger
	otp            otpChallenger
	codec          tokenCodec
	clock          clock.Clock
}

type ServiceDeps struct {
	CredentialRepo credentialStore
	UserRepo       userStore
	RoleRepo       roleStore
	Ledger         refreshTokenLedger
	Otp            otpChallenger
	Codec          tokenCodec
	Clock          clock.Clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		credentialRepo: deps.CredentialRepo,
		userRepo:       deps.UserRepo,
		roleRepo:       deps.RoleRepo,
		ledger:         deps.Ledger,
		otp:            deps.Otp,
		codec:          deps.Codec,
		clock:          deps.Clock,
	}
}

// InitiateLogin verifies the password factor and dispatches the OTP.
// Unknown identifier and wrong password are indistinguishable to the
// caller. No token is issued at this step.
func (s *service) InitiateLogin(ctx context.Context, req LoginRequest) (*domain.Credential, error) {
	cred, err := s.findCredential(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.userRepo.Get(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsSuspended {
		return nil, domain.ErrAccountSuspended
	}
	if err := s.otp.Issue(ctx, cred); err != nil {
		return nil, err
	}
	cred.User = user
	return cred, nil
}

// CompleteLogin verifies the OTP factor and issues the token pair. The
// credential is re-resolved from the identifier; no session object binds
// the two steps.
func (s *service) CompleteLogin(ctx context.Context, req VerifyOtpRequest) (*TokenPair, error) {
	cred, err := s.findCredential(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	ok, err := s.otp.Verify(ctx, cred, req.Otp)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidOrExpiredOtp
	}

	user, err := s.userRepo.Get(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.Get(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.SignAccess(user.UserID, role.Name)
	if err != nil {
		return nil, err
	}
	refreshToken, expiresAt, err := s.codec.SignRefresh(user.UserID)
	if err != nil {
		return nil, err
	}
	rec := &domain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.UserID,
		ExpiresAt: expiresAt.Unix(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.ledger.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	user.Role = role
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		User:         domain.NewProfile(user, cred, role.Name),
	}, nil
}

// ResendOtp re-issues the pending code, subject to the resend throttle.
func (s *service) ResendOtp(ctx context.Context, identifier string) error {
	cred, err := s.findCredential(ctx, identifier)
	if err != nil {
		return err
	}
	user, err := s.userRepo.Get(ctx, cred.UserID)
	if err != nil {
		return err
	}
	if user.IsSuspended {
		return domain.ErrAccountSuspended
	}
	if !s.otp.CanResend(cred) {
		return domain.ErrOtpResendThrottled
	}
	return s.otp.Issue(ctx, cred)
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is not rotated: it stays valid until it expires
// or is revoked.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*AccessTokenResult, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwtinfra.KindRefresh {
		return nil, domain.ErrWrongTokenKind
	}

	rec, err := s.ledger.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenRevoked
		}
		return nil, err
	}
	if !rec.Live(s.clock.Now()) {
		return nil, domain.ErrTokenRevoked
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsSuspended {
		return nil, domain.ErrAccountSuspended
	}
	role, err := s.roleRepo.Get(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.SignAccess(user.UserID, role.Name)
	if err != nil {
		return nil, err
	}
	return &AccessTokenResult{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.codec.AccessTTL().Seconds()),
	}, nil
}

// Logout revokes the ledger record for the given refresh token. Unknown
// tokens are a no-op: logout is idempotent.
func (s *service) Logout(ctx context.Context, refreshToken string) error {
	return s.ledger.Revoke(ctx, refreshToken)
}

// RevokeAll revokes every live refresh token of the user ("log out
// everywhere").
func (s *service) RevokeAll(ctx context.Context, userID string) error {
	return s.ledger.RevokeAllByUser(ctx, userID)
}

// findCredential resolves an identifier that may be an email or a
// username, matching stored values case-sensitively.
func (s *service) findCredential(ctx context.Context, identifier string) (*domain.Credential, error) {
	cred, err := s.credentialRepo.GetByEmail(ctx, identifier)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	cred, err = s.credentialRepo.GetByUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return cred, nil
}
