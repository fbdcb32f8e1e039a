package dynamo

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Seed writes the role reference data and, in development, a bootstrap
// admin account. Idempotent: existing rows are left untouched.
func Seed(ctx context.Context, roles *RoleRepo, users *UserRepo, creds *CredentialRepo, appEnv string) {
	for _, name := range []string{domain.RoleUser, domain.RoleAdmin} {
		if _, err := roles.GetByName(ctx, name); err == nil {
			continue
		}
		role := &domain.Role{RoleID: id.New(), Name: name}
		if err := roles.Put(ctx, role); err != nil {
			slog.Warn("could not seed role", "role", name, "err", err)
		} else {
			slog.Info("seeded role", "role", name)
		}
	}

	if appEnv != "development" {
		return
	}
	if _, err := creds.GetByUsername(ctx, "admin"); err == nil {
		return
	}
	adminRole, err := roles.GetByName(ctx, domain.RoleAdmin)
	if err != nil {
		slog.Warn("could not seed admin user: admin role missing", "err", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Admin@123456"), bcrypt.DefaultCost)
	if err != nil {
		slog.Warn("could not seed admin user", "err", err)
		return
	}
	now := time.Now().UTC()
	phone := "+1234567890"
	admin := &domain.User{
		UserID:      id.New(),
		RoleID:      adminRole.RoleID,
		FirstName:   "System",
		LastName:    "Administrator",
		Dob:         time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:     "123 Admin Street",
		Gender:      "other",
		Nationality: "Global",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cred := &domain.Credential{
		CredentialID: id.New(),
		UserID:       admin.UserID,
		Email:        "admin@go-auth-api.local",
		Username:     "admin",
		PhoneNumber:  &phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Put(ctx, admin); err != nil {
		slog.Warn("could not seed admin user", "err", err)
		return
	}
	if err := creds.Put(ctx, cred); err != nil {
		slog.Warn("could not seed admin credential", "err", err)
		return
	}
	slog.Info("seeded development admin account", "username", "admin")
}
