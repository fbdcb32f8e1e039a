package domain

// Well-known role names.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role is immutable reference data; seeded at startup, never mutated by
// the application.
type Role struct {
	RoleID string `json:"id" dynamodbav:"role_id"`
	Name   string `json:"name" dynamodbav:"name"`
}
