package session

import (
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// ResetTokenTTL bounds how long a password-reset token stays redeemable.
const ResetTokenTTL = time.Hour

// RequestPasswordReset issues a reset token for an active, password-
// credentialed account. It returns "" without error when no such account
// exists; callers respond identically either way to prevent enumeration.
// A new request supersedes any prior unused token for the user.
func (m *Manager) RequestPasswordReset(email string) (string, error) {
	email = credential.NormalizeEmail(email)
	now := m.now()

	rawToken, err := credential.NewToken(credential.ResetTokenBytes)
	if err != nil {
		return "", apperror.Internal(err)
	}

	v, err := m.store.Transact(func(st *model.State) (any, error) {
		user := st.UserByEmail(email)
		if user == nil || !user.HasPassword() || user.AccountStatus != model.StatusActive {
			return false, nil
		}

		for i := range st.Auth.ResetTokens {
			t := &st.Auth.ResetTokens[i]
			if t.UserID == user.ID && t.UsedAt == nil {
				superseded := now
				t.UsedAt = &superseded
			}
		}

		st.Auth.ResetTokens = append(st.Auth.ResetTokens, model.PasswordResetToken{
			ID:        credential.NewID(),
			UserID:    user.ID,
			TokenHash: credential.Digest(rawToken),
			ExpiresAt: now.Add(ResetTokenTTL),
		})
		st.AppendEvent(model.AuthEvent{
			Time: now, Type: model.EventPasswordReset,
			UserID: user.ID, Email: email, Detail: "requested",
		})
		return true, nil
	})
	if err != nil {
		return "", err
	}
	if !v.(bool) {
		return "", nil
	}
	return rawToken, nil
}

// CompletePasswordReset consumes the token exactly once, rotates the
// password, and revokes every session of the user.
func (m *Manager) CompletePasswordReset(rawToken, newPassword string) error {
	now := m.now()
	hash := credential.Digest(rawToken)

	_, err := m.store.Transact(func(st *model.State) (any, error) {
		var token *model.PasswordResetToken
		for i := range st.Auth.ResetTokens {
			t := &st.Auth.ResetTokens[i]
			if credential.DigestEqual(t.TokenHash, hash) {
				token = t
				break
			}
		}
		if token == nil || !token.Valid(now) {
			return nil, apperror.Validation("invalid or expired reset token")
		}
		user := st.UserByID(token.UserID)
		if user == nil || user.AccountStatus != model.StatusActive {
			return nil, apperror.Validation("invalid or expired reset token")
		}
		if msg := credential.ValidatePassword(newPassword, user.Email); msg != "" {
			return nil, apperror.Validation(msg)
		}

		newHash, salt, iterations, err := credential.HashPassword(newPassword)
		if err != nil {
			return nil, apperror.Internal(err)
		}

		used := now
		token.UsedAt = &used
		user.PasswordHash = newHash
		user.PasswordSalt = salt
		user.PasswordIterations = iterations
		user.UpdatedDate = now
		revokeAll(st, user.ID, "", now)
		st.AppendEvent(model.AuthEvent{
			Time: now, Type: model.EventPasswordReset,
			UserID: user.ID, Email: user.Email, Detail: "completed",
		})
		return nil, nil
	})
	return err
}

// ChangePassword verifies the current password, applies the policy to the
// new one, and revokes all other sessions of the user.
func (m *Manager) ChangePassword(userID, currentSessionID, oldPassword, newPassword string) error {
	now := m.now()
	_, err := m.store.Transact(func(st *model.State) (any, error) {
		user := st.UserByID(userID)
		if user == nil {
			return nil, apperror.NotFound("user not found")
		}
		if !user.HasPassword() ||
			!credential.VerifyPassword(oldPassword, user.PasswordHash, user.PasswordSalt, user.PasswordIterations) {
			return nil, apperror.Validation("current password is incorrect")
		}
		if msg := credential.ValidatePassword(newPassword, user.Email); msg != "" {
			return nil, apperror.Validation(msg)
		}

		newHash, salt, iterations, err := credential.HashPassword(newPassword)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		user.PasswordHash = newHash
		user.PasswordSalt = salt
		user.PasswordIterations = iterations
		user.UpdatedDate = now
		revokeAll(st, userID, currentSessionID, now)
		st.AppendEvent(model.AuthEvent{
			Time: now, Type: model.EventPasswordChange,
			UserID: userID, Email: user.Email,
		})
		return nil, nil
	})
	return err
}
