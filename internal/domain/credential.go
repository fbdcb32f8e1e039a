package domain

import "time"

// Credential carries the login identifiers and second-factor state for
// exactly one user. The pending OTP lives on the credential row itself:
// Otp and OtpExpiresAt are either both set or both absent.
type Credential struct {
	CredentialID string     `json:"id" dynamodbav:"credential_id"`
	UserID       string     `json:"user_id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	Username     string     `json:"username" dynamodbav:"username"`
	PhoneNumber  *string    `json:"phone_number,omitempty" dynamodbav:"phone_number"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Otp          *string    `json:"-" dynamodbav:"otp"`
	OtpExpiresAt *time.Time `json:"-" dynamodbav:"otp_expires_at"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" dynamodbav:"updated_at"`

	User *User `json:"user,omitempty" dynamodbav:"-"`
}

// HasValidOtp reports whether code matches the pending OTP and now is
// still before its expiry.
func (c *Credential) HasValidOtp(code string, now time.Time) bool {
	if c.Otp == nil || c.OtpExpiresAt == nil {
		return false
	}
	return *c.Otp == code && now.Before(*c.OtpExpiresAt)
}

// SetOtp stores a pending code, replacing any previous one.
func (c *Credential) SetOtp(code string, expiresAt, now time.Time) {
	c.Otp = &code
	c.OtpExpiresAt = &expiresAt
	c.UpdatedAt = now
}

// ClearOtp removes the pending code after a successful verification.
func (c *Credential) ClearOtp(now time.Time) {
	c.Otp = nil
	c.OtpExpiresAt = nil
	c.UpdatedAt = now
}
