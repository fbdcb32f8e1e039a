package domain

import "time"

// Profile is the user-facing view joined across user, credential and
// role. Password hash and OTP state are never part of it.
type Profile struct {
	UserID      string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	Dob         string    `json:"dob"` // YYYY-MM-DD
	Address     string    `json:"address"`
	Gender      string    `json:"gender"`
	Nationality string    `json:"nationality"`
	IsSuspended bool      `json:"is_suspended"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewProfile joins the three entities into the response view.
func NewProfile(u *User, c *Credential, role string) *Profile {
	return &Profile{
		UserID:      u.UserID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Dob:         u.Dob.Format("2006-01-02"),
		Address:     u.Address,
		Gender:      u.Gender,
		Nationality: u.Nationality,
		IsSuspended: u.IsSuspended,
		Role:        role,
		Email:       c.Email,
		Username:    c.Username,
		PhoneNumber: c.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}
