package domain

import "time"

// RefreshToken is the durable ledger record for an issued refresh token.
// The token string itself is the primary key; the record is only ever
// mutated to flip IsRevoked. Multiple live records may exist per user
// (one per device).
type RefreshToken struct {
	Token     string    `json:"-" dynamodbav:"token"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds; doubles as DynamoDB TTL
	IsRevoked bool      `json:"is_revoked" dynamodbav:"is_revoked"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Live reports whether the record is still honorable: not revoked and
// not past its expiry. Expiry here is the ledger's own clock check,
// independent of the token's cryptographic exp claim.
func (t *RefreshToken) Live(now time.Time) bool {
	return !t.IsRevoked && now.Unix() < t.ExpiresAt
}
