package domain

import "time"

type User struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	RoleID      string    `json:"-" dynamodbav:"role_id"`
	FirstName   string    `json:"first_name" dynamodbav:"first_name"`
	LastName    string    `json:"last_name" dynamodbav:"last_name"`
	Dob         time.Time `json:"dob" dynamodbav:"dob"`
	Address     string    `json:"address" dynamodbav:"address"`
	Gender      string    `json:"gender" dynamodbav:"gender"`
	Nationality string    `json:"nationality" dynamodbav:"nationality"`
	IsSuspended bool      `json:"is_suspended" dynamodbav:"is_suspended"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`

	// Role is resolved from the roles table; never stored on the user item.
	Role *Role `json:"role,omitempty" dynamodbav:"-"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AdminCreateUserRequest is the admin-only user creation payload: profile
// attributes plus the credential fields for the new account.
type AdminCreateUserRequest struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	Dob         string  `json:"dob" validate:"required"` // expected format: YYYY-MM-DD
	Address     string  `json:"address" validate:"required"`
	Gender      string  `json:"gender" validate:"required,oneof=male female other"`
	Nationality string  `json:"nationality" validate:"required"`
	Role        string  `json:"role"` // defaults to "user"
	Email       string  `json:"email" validate:"required,email"`
	Username    string  `json:"username" validate:"required,min=3,max=64"`
	PhoneNumber *string `json:"phone_number"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
}
