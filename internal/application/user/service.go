package user

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/clock"
	"github.com/go-auth-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldIsSuspended = "is_suspended"
)

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type credentialStore interface {
	Put(ctx context.Context, c *domain.Credential) error
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Credential, error)
}

type roleStore interface {
	Get(ctx context.Context, roleID string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
}

type otpChallenger interface {
	Issue(ctx context.Context, cred *domain.Credential) error
}

// Service covers the user surface around the authentication core: admin
// account creation, profile reads and suspension toggling.
type Service interface {
	Create(ctx context.Context, req domain.AdminCreateUserRequest) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	ToggleSuspension(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	userRepo       userStore
	credentialRepo credentialStore
	roleRepo       roleStore
	otp            otpChallenger
	clock          clock.Clock
}

type ServiceDeps struct {
	UserRepo       userStore
	CredentialRepo credentialStore
	RoleRepo       roleStore
	Otp            otpChallenger
	Clock          clock.Clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:       deps.UserRepo,
		credentialRepo: deps.CredentialRepo,
		roleRepo:       deps.RoleRepo,
		otp:            deps.Otp,
		clock:          deps.Clock,
	}
}

// Create inserts a new user and credential pair, then dispatches a
// verification OTP to the new account's email.
func (s *service) Create(ctx context.Context, req domain.AdminCreateUserRequest) (*domain.User, error) {
	roleName := req.Role
	if roleName == "" {
		roleName = domain.RoleUser
	}
	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if _, err := s.credentialRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, err := s.credentialRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}

	dob, err := time.Parse("2006-01-02", req.Dob)
	if err != nil {
		return nil, fmt.Errorf("dob must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := &domain.User{
		UserID:      id.New(),
		RoleID:      role.RoleID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Dob:         dob,
		Address:     req.Address,
		Gender:      req.Gender,
		Nationality: req.Nationality,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cred := &domain.Credential{
		CredentialID: id.New(),
		UserID:       u.UserID,
		Email:        req.Email,
		Username:     req.Username,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Put(ctx, u); err != nil {
		return nil, err
	}
	if err := s.credentialRepo.Put(ctx, cred); err != nil {
		return nil, err
	}
	if err := s.otp.Issue(ctx, cred); err != nil {
		return nil, err
	}

	u.Role = role
	return u, nil
}

// GetProfile joins user, credential and role into the response view.
func (s *service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cred, err := s.credentialRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.Get(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}
	return domain.NewProfile(u, cred, role.Name), nil
}

// ToggleSuspension flips the suspension flag and returns the updated user.
func (s *service) ToggleSuspension(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{
		fieldIsSuspended: !u.IsSuspended,
	}); err != nil {
		return nil, err
	}
	u.IsSuspended = !u.IsSuspended
	u.UpdatedAt = s.clock.Now()
	return u, nil
}
