package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/clock"
	pkgtoken "github.com/go-auth-api/internal/pkg/token"
	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "type" claim. An access token authorizes API
// calls; a refresh token is only exchangeable for new access tokens.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role,omitempty"` // access tokens only
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs. The key pair is loaded once at
// construction and read-only afterwards, so it is safe to share across
// concurrent signing operations without locking.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

func NewProvider(cfg *config.Config, clk clock.Clock) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clock:      clk,
	}, nil
}

// AccessTTL reports the configured access-token lifetime, used by callers
// to fill the expires_in field of token responses.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// SignAccess issues a short-lived access token carrying the user's role.
func (p *Provider) SignAccess(userID, role string) (string, error) {
	now := p.clock.Now()
	claims := Claims{
		UserID:    userID,
		Role:      role,
		TokenType: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
}

// SignRefresh issues a long-lived refresh token with a fresh 256-bit jti.
// The expiry is returned so the caller can persist the ledger record.
func (p *Provider) SignRefresh(userID string) (token string, expiresAt time.Time, err error) {
	jti, err := pkgtoken.NewTokenID()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.clock.Now()
	expiresAt = now.Add(p.refreshTTL)
	claims := Claims{
		UserID:    userID,
		TokenType: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   userID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(p.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify decodes and validates a token against the public key and the
// injected clock. It never consults any store: a revoked but well-signed
// refresh token passes here and is rejected by the ledger instead.
// Returns domain.ErrTokenExpired past exp, domain.ErrTokenInvalid for a
// bad signature or malformed structure.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	}, jwt.WithTimeFunc(p.clock.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%v: %w", err, domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrTokenInvalid)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
