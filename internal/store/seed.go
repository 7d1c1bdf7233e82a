package store

import (
	"fmt"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// SeedConfig describes the bootstrap admin account.
type SeedConfig struct {
	AdminEmail string
	// AdminPassword is optional; when empty the admin account is created
	// without a password credential and must be claimed via password reset.
	AdminPassword string
}

func seedState(seed SeedConfig) (*model.State, error) {
	now := time.Now().UTC()
	admin := model.User{
		ID:            credential.NewID(),
		Email:         credential.NormalizeEmail(seed.AdminEmail),
		Role:          model.RoleAdmin,
		AccountStatus: model.StatusActive,
		EmailVerified: true,
		CreatedDate:   now,
		UpdatedDate:   now,
	}
	if seed.AdminPassword != "" {
		hash, salt, iterations, err := credential.HashPassword(seed.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed admin credential: %w", err)
		}
		admin.PasswordHash = hash
		admin.PasswordSalt = salt
		admin.PasswordIterations = iterations
	}

	st := &model.State{
		SchemaVersion: schemaVersion,
		UpdatedDate:   now,
		Auth: model.AuthState{
			Users:     []model.User{admin},
			Throttles: make(map[string]model.LoginThrottle),
		},
		Records: make(map[string][]model.Record),
	}
	return st, nil
}

// ensureShape repairs a loaded state: non-nil containers and the admin
// invariant (the configured admin email is always an active admin).
func ensureShape(st *model.State, seed SeedConfig) {
	if st.Records == nil {
		st.Records = make(map[string][]model.Record)
	}
	if st.Auth.Throttles == nil {
		st.Auth.Throttles = make(map[string]model.LoginThrottle)
	}
	st.SchemaVersion = schemaVersion

	adminEmail := credential.NormalizeEmail(seed.AdminEmail)
	if admin := st.UserByEmail(adminEmail); admin != nil {
		admin.Role = model.RoleAdmin
		admin.AccountStatus = model.StatusActive
		return
	}

	now := time.Now().UTC()
	st.Auth.Users = append(st.Auth.Users, model.User{
		ID:            credential.NewID(),
		Email:         adminEmail,
		Role:          model.RoleAdmin,
		AccountStatus: model.StatusActive,
		EmailVerified: true,
		CreatedDate:   now,
		UpdatedDate:   now,
	})
}
