package session

import (
	"strings"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// Register creates a password-credentialed user and an initial session.
func (m *Manager) Register(email, password, deviceID, ip, userAgent string) (*model.User, *NewSession, error) {
	email = credential.NormalizeEmail(email)
	if !strings.Contains(email, "@") || len(email) < 3 {
		return nil, nil, apperror.Validation("invalid email address")
	}
	if msg := credential.ValidatePassword(password, email); msg != "" {
		return nil, nil, apperror.Validation(msg)
	}

	hash, salt, iterations, err := credential.HashPassword(password)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}

	now := m.now()
	user := model.User{
		ID:                 credential.NewID(),
		Email:              email,
		Role:               model.RoleUser,
		AccountStatus:      model.StatusActive,
		PasswordHash:       hash,
		PasswordSalt:       salt,
		PasswordIterations: iterations,
		CreatedDate:        now,
		UpdatedDate:        now,
	}

	_, err = m.store.Transact(func(st *model.State) (any, error) {
		if st.UserByEmail(email) != nil {
			return nil, apperror.Conflict("an account with this email already exists")
		}
		st.Auth.Users = append(st.Auth.Users, user)
		st.AppendEvent(model.AuthEvent{
			Time: now, Type: model.EventRegister,
			UserID: user.ID, Email: email, DeviceID: credential.NormalizeDeviceID(deviceID), IP: ip,
		})
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}

	sess, err := m.Create(user.ID, deviceID, ip, userAgent, false)
	if err != nil {
		return nil, nil, err
	}
	return &user, sess, nil
}

// Login verifies credentials behind the throttle and issues a session.
// The lock is checked before any password work; a failure increments the
// triple's counter.
func (m *Manager) Login(email, password, deviceID, ip, userAgent string, remember bool) (*model.User, *NewSession, error) {
	email = credential.NormalizeEmail(email)
	deviceID = credential.NormalizeDeviceID(deviceID)

	if status := m.CheckThrottle(email, deviceID, ip); status.Locked {
		return nil, nil, apperror.Locked(status.RetryMinutes)
	}

	st := m.store.Read()
	user := st.UserByEmail(email)
	ok := user != nil &&
		user.AccountStatus == model.StatusActive &&
		user.HasPassword() &&
		credential.VerifyPassword(password, user.PasswordHash, user.PasswordSalt, user.PasswordIterations)

	if !ok {
		if _, err := m.RecordFailure(email, deviceID, ip); err != nil {
			m.logger.Error("record login failure", "error", err)
		}
		m.appendEvent(model.AuthEvent{
			Time: m.now(), Type: model.EventLoginFailed,
			Email: email, DeviceID: deviceID, IP: ip,
		})
		return nil, nil, apperror.Unauthorized("invalid email or password")
	}

	if err := m.ClearThrottle(email, deviceID, ip); err != nil {
		m.logger.Error("clear throttle", "error", err)
	}

	sess, err := m.Create(user.ID, deviceID, ip, userAgent, remember)
	if err != nil {
		return nil, nil, err
	}
	m.appendEvent(model.AuthEvent{
		Time: m.now(), Type: model.EventLogin,
		UserID: user.ID, Email: email, DeviceID: deviceID, IP: ip,
	})
	if sess.NewDevice {
		m.appendEvent(model.AuthEvent{
			Time: m.now(), Type: model.EventNewDevice,
			UserID: user.ID, Email: email, DeviceID: deviceID, IP: ip,
		})
	}
	return user, sess, nil
}

// appendEvent records an audit event outside any larger transaction;
// best-effort.
func (m *Manager) appendEvent(ev model.AuthEvent) {
	if _, err := m.store.Transact(func(st *model.State) (any, error) {
		st.AppendEvent(ev)
		return nil, nil
	}); err != nil {
		m.logger.Warn("append auth event", "error", err)
	}
}
