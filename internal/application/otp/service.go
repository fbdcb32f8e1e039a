package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/clock"
)

type credentialStore interface {
	SetOtp(ctx context.Context, credentialID, code string, expiresAt time.Time) error
	ClearOtp(ctx context.Context, credentialID string) error
}

type mailer interface {
	SendOtp(to, code string, expiryMinutes int) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Service manages the one-time-code second factor: issuing, verifying and
// resend throttling. The pending code is bound to the credential row, not
// to any session object.
type Service interface {
	Issue(ctx context.Context, cred *domain.Credential) error
	Verify(ctx context.Context, cred *domain.Credential, code string) (bool, error)
	CanResend(cred *domain.Credential) bool
}

type service struct {
	credentialRepo credentialStore
	mailer         mailer
	smsSender      smsSender // nil when no SMS channel is configured
	codeLength     int
	expiryMin      int // minutes
	expiryMax      int // minutes
	resendWindow   time.Duration
	clock          clock.Clock
}

type ServiceDeps struct {
	CredentialRepo credentialStore
	Mailer         mailer
	SMSSender      smsSender
	CodeLength     int
	ExpiryMin      int
	ExpiryMax      int
	ResendWindow   time.Duration
	Clock          clock.Clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		credentialRepo: deps.CredentialRepo,
		mailer:         deps.Mailer,
		smsSender:      deps.SMSSender,
		codeLength:     deps.CodeLength,
		expiryMin:      deps.ExpiryMin,
		expiryMax:      deps.ExpiryMax,
		resendWindow:   deps.ResendWindow,
		clock:          deps.Clock,
	}
}

// Issue generates a fresh code, persists it on the credential (replacing
// any pending code) and dispatches it. Delivery failures are logged, not
// returned: the code is already stored, so the caller can resend once the
// cooldown passes.
func (s *service) Issue(ctx context.Context, cred *domain.Credential) error {
	code, err := s.generateCode()
	if err != nil {
		return err
	}
	expiryMinutes, err := s.pickExpiryMinutes()
	if err != nil {
		return err
	}
	now := s.clock.Now()
	expiresAt := now.Add(time.Duration(expiryMinutes) * time.Minute)

	if err := s.credentialRepo.SetOtp(ctx, cred.CredentialID, code, expiresAt); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	cred.SetOtp(code, expiresAt, now)

	if err := s.mailer.SendOtp(cred.Email, code, expiryMinutes); err != nil {
		slog.Warn("failed to send otp email", "credential_id", cred.CredentialID, "err", err)
	}
	if s.smsSender != nil && cred.PhoneNumber != nil {
		msg := fmt.Sprintf("Your login verification code is %s", code)
		if err := s.smsSender.SendSMS(ctx, *cred.PhoneNumber, msg); err != nil {
			slog.Warn("failed to send otp sms", "credential_id", cred.CredentialID, "err", err)
		}
	}
	return nil
}

// Verify checks the submitted code against the pending one. A match
// clears the stored code so it cannot be replayed; a mismatch leaves the
// credential untouched. The error return carries storage failures only.
func (s *service) Verify(ctx context.Context, cred *domain.Credential, code string) (bool, error) {
	now := s.clock.Now()
	if !cred.HasValidOtp(code, now) {
		return false, nil
	}
	if err := s.credentialRepo.ClearOtp(ctx, cred.CredentialID); err != nil {
		return false, fmt.Errorf("clear otp: %w", err)
	}
	cred.ClearOtp(now)
	return true, nil
}

// CanResend reports whether a new code may be issued: no code is pending,
// the pending code has expired, or the resend window has elapsed since
// the credential's last mutation.
func (s *service) CanResend(cred *domain.Credential) bool {
	if cred.OtpExpiresAt == nil {
		return true
	}
	now := s.clock.Now()
	if now.After(*cred.OtpExpiresAt) {
		return true
	}
	return cred.UpdatedAt.Before(now.Add(-s.resendWindow))
}

// generateCode draws uniformly over the full digit range for the
// configured length (4 digits -> 1000..9999).
func (s *service) generateCode() (string, error) {
	low := int64(1)
	for i := 1; i < s.codeLength; i++ {
		low *= 10
	}
	span := low * 9
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", low+n.Int64()), nil
}

// pickExpiryMinutes draws uniformly from [expiryMin, expiryMax] whole minutes.
func (s *service) pickExpiryMinutes() (int, error) {
	span := int64(s.expiryMax-s.expiryMin) + 1
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return 0, fmt.Errorf("pick otp expiry: %w", err)
	}
	return s.expiryMin + int(n.Int64()), nil
}
