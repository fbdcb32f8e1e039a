package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/clock"
)

// --- mocks ---

type mockCredentialStore struct{ mock.Mock }

func (m *mockCredentialStore) SetOtp(ctx context.Context, credentialID, code string, expiresAt time.Time) error {
	return m.Called(ctx, credentialID, code, expiresAt).Error(0)
}
func (m *mockCredentialStore) ClearOtp(ctx context.Context, credentialID string) error {
	return m.Called(ctx, credentialID).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendOtp(to, code string, expiryMinutes int) error {
	return m.Called(to, code, expiryMinutes).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- builder ---

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func newService(cs *mockCredentialStore, ml *mockMailer, sms smsSender, at time.Time) Service {
	return NewService(ServiceDeps{
		CredentialRepo: cs,
		Mailer:         ml,
		SMSSender:      sms,
		CodeLength:     4,
		ExpiryMin:      5,
		ExpiryMax:      10,
		ResendWindow:   time.Minute,
		Clock:          clock.Func(func() time.Time { return at }),
	})
}

func testCredential() *domain.Credential {
	return &domain.Credential{
		CredentialID: "c1",
		UserID:       "u1",
		Email:        "alice@example.com",
		Username:     "alice",
		UpdatedAt:    testNow.Add(-time.Hour),
	}
}

// --- Issue ---

func TestIssue_StoresCodeAndExpiryWithinWindow(t *testing.T) {
	cs := &mockCredentialStore{}
	ml := &mockMailer{}
	cred := testCredential()

	var storedCode string
	var storedExpiry time.Time
	cs.On("SetOtp", mock.Anything, "c1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			storedCode = args.String(2)
			storedExpiry = args.Get(3).(time.Time)
		}).Return(nil)
	ml.On("SendOtp", "alice@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("int")).Return(nil)

	svc := newService(cs, ml, nil, testNow)
	require.NoError(t, svc.Issue(context.Background(), cred))

	require.Len(t, storedCode, 4)
	assert.GreaterOrEqual(t, storedCode, "1000")
	assert.LessOrEqual(t, storedCode, "9999")

	assert.False(t, storedExpiry.Before(testNow.Add(5*time.Minute)))
	assert.False(t, storedExpiry.After(testNow.Add(10*time.Minute)))

	// In-memory credential mirrors the stored state.
	require.NotNil(t, cred.Otp)
	assert.Equal(t, storedCode, *cred.Otp)
	require.NotNil(t, cred.OtpExpiresAt)
	assert.Equal(t, storedExpiry, *cred.OtpExpiresAt)
	assert.Equal(t, testNow, cred.UpdatedAt)

	cs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestIssue_OverwritesPriorPendingCode(t *testing.T) {
	cs := &mockCredentialStore{}
	ml := &mockMailer{}
	cred := testCredential()
	old := "1111"
	oldExp := testNow.Add(3 * time.Minute)
	cred.Otp = &old
	cred.OtpExpiresAt = &oldExp

	cs.On("SetOtp", mock.Anything, "c1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendOtp", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(cs, ml, nil, testNow)
	require.NoError(t, svc.Issue(context.Background(), cred))

	// Only the latest code remains, with a fresh expiry window.
	require.NotNil(t, cred.OtpExpiresAt)
	assert.False(t, cred.OtpExpiresAt.Before(testNow.Add(5*time.Minute)))
	assert.Equal(t, testNow, cred.UpdatedAt)
}

func TestIssue_MailerFailureIsNotAnAuthFailure(t *testing.T) {
	cs := &mockCredentialStore{}
	ml := &mockMailer{}
	cred := testCredential()

	cs.On("SetOtp", mock.Anything, "c1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendOtp", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newService(cs, ml, nil, testNow)
	assert.NoError(t, svc.Issue(context.Background(), cred))
}

func TestIssue_SendsSMSWhenPhonePresent(t *testing.T) {
	cs := &mockCredentialStore{}
	ml := &mockMailer{}
	sms := &mockSMSSender{}
	cred := testCredential()
	phone := "+15551234567"
	cred.PhoneNumber = &phone

	cs.On("SetOtp", mock.Anything, "c1", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendOtp", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sms.On("SendSMS", mock.Anything, phone, mock.AnythingOfType("string")).Return(nil)

	svc := newService(cs, ml, sms, testNow)
	require.NoError(t, svc.Issue(context.Background(), cred))
	sms.AssertExpectations(t)
}

func TestIssue_StorageFailurePropagates(t *testing.T) {
	cs := &mockCredentialStore{}
	ml := &mockMailer{}
	cred := testCredential()

	cs.On("SetOtp", mock.Anything, "c1", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newService(cs, ml, nil, testNow)
	assert.Error(t, svc.Issue(context.Background(), cred))
	ml.AssertNotCalled(t, "SendOtp", mock.Anything, mock.Anything, mock.Anything)
}

// --- Verify ---

func pendingCredential(code string, expiresAt time.Time) *domain.Credential {
	cred := testCredential()
	cred.Otp = &code
	cred.OtpExpiresAt = &expiresAt
	return cred
}

func TestVerify_HappyPath_ClearsCode(t *testing.T) {
	cs := &mockCredentialStore{}
	cred := pendingCredential("4821", testNow.Add(7*time.Minute))
	cs.On("ClearOtp", mock.Anything, "c1").Return(nil)

	svc := newService(cs, &mockMailer{}, nil, testNow)
	ok, err := svc.Verify(context.Background(), cred, "4821")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, cred.Otp)
	assert.Nil(t, cred.OtpExpiresAt)
	cs.AssertExpectations(t)
}

func TestVerify_CodeIsOneTimeUse(t *testing.T) {
	cs := &mockCredentialStore{}
	cred := pendingCredential("4821", testNow.Add(7*time.Minute))
	cs.On("ClearOtp", mock.Anything, "c1").Return(nil)

	svc := newService(cs, &mockMailer{}, nil, testNow)
	ok, err := svc.Verify(context.Background(), cred, "4821")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Verify(context.Background(), cred, "4821")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongCode_LeavesStateUntouched(t *testing.T) {
	cs := &mockCredentialStore{}
	cred := pendingCredential("4821", testNow.Add(7*time.Minute))

	svc := newService(cs, &mockMailer{}, nil, testNow)
	ok, err := svc.Verify(context.Background(), cred, "0000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, cred.Otp)
	cs.AssertNotCalled(t, "ClearOtp", mock.Anything, mock.Anything)
}

func TestVerify_ExpiredCode_FailsEvenOnDigitMatch(t *testing.T) {
	cs := &mockCredentialStore{}
	cred := pendingCredential("4821", testNow.Add(-time.Second))

	svc := newService(cs, &mockMailer{}, nil, testNow)
	ok, err := svc.Verify(context.Background(), cred, "4821")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_NoPendingCode(t *testing.T) {
	svc := newService(&mockCredentialStore{}, &mockMailer{}, nil, testNow)
	ok, err := svc.Verify(context.Background(), testCredential(), "4821")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_StorageFailurePropagates(t *testing.T) {
	cs := &mockCredentialStore{}
	cred := pendingCredential("4821", testNow.Add(7*time.Minute))
	cs.On("ClearOtp", mock.Anything, "c1").Return(assert.AnError)

	svc := newService(cs, &mockMailer{}, nil, testNow)
	_, err := svc.Verify(context.Background(), cred, "4821")
	assert.Error(t, err)
}

// --- CanResend ---

func TestCanResend_NoPendingCode(t *testing.T) {
	svc := newService(&mockCredentialStore{}, &mockMailer{}, nil, testNow)
	assert.True(t, svc.CanResend(testCredential()))
}

func TestCanResend_PendingExpiredCode(t *testing.T) {
	svc := newService(&mockCredentialStore{}, &mockMailer{}, nil, testNow)
	cred := pendingCredential("4821", testNow.Add(-time.Minute))
	assert.True(t, svc.CanResend(cred))
}

func TestCanResend_FreshCode_Throttled(t *testing.T) {
	svc := newService(&mockCredentialStore{}, &mockMailer{}, nil, testNow)
	cred := pendingCredential("4821", testNow.Add(7*time.Minute))
	cred.UpdatedAt = testNow.Add(-30 * time.Second)
	assert.False(t, svc.CanResend(cred))
}

func TestCanResend_CooldownElapsed(t *testing.T) {
	svc := newService(&mockCredentialStore{}, &mockMailer{}, nil, testNow)
	cred := pendingCredential("4821", testNow.Add(7*time.Minute))
	cred.UpdatedAt = testNow.Add(-2 * time.Minute)
	assert.True(t, svc.CanResend(cred))
}
