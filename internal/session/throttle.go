package session

import (
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// Lockout policy: maxAttempts failures per (email, device, ip) triple
// inside attemptWindow locks the triple for lockDuration. The window starts
// at the first failed attempt. When a lock expires the next attempt, success
// or failure, starts a fresh window with the counter reset; the
// window start is not extended while locked.
const (
	maxAttempts   = 5
	attemptWindow = 15 * time.Minute
	lockDuration  = 15 * time.Minute
)

// ThrottleStatus reports whether a triple is currently locked and how long
// until retry is allowed.
type ThrottleStatus struct {
	Locked       bool
	RetryMinutes int
}

// CheckThrottle is consulted before any password verification is attempted.
func (m *Manager) CheckThrottle(email, deviceID, ip string) ThrottleStatus {
	now := m.now()
	st := m.store.Read()
	entry, ok := st.Auth.Throttles[model.ThrottleKey(email, deviceID, ip)]
	if !ok || entry.LockUntil == nil || !now.Before(*entry.LockUntil) {
		return ThrottleStatus{}
	}
	minutes := int(entry.LockUntil.Sub(now).Minutes()) + 1
	return ThrottleStatus{Locked: true, RetryMinutes: minutes}
}

// RecordFailure increments the attempt counter and returns true when this
// failure tripped the lock.
func (m *Manager) RecordFailure(email, deviceID, ip string) (bool, error) {
	now := m.now()
	key := model.ThrottleKey(email, deviceID, ip)
	v, err := m.store.Transact(func(st *model.State) (any, error) {
		entry, ok := st.Auth.Throttles[key]
		expired := entry.LockUntil != nil && !now.Before(*entry.LockUntil)
		windowElapsed := now.Sub(entry.FirstAttempt) > attemptWindow
		if !ok || expired || windowElapsed {
			entry = model.LoginThrottle{
				Email: email, DeviceID: deviceID, IP: ip,
				Attempts: 1, FirstAttempt: now,
			}
		} else {
			entry.Attempts++
		}

		locked := false
		if entry.Attempts >= maxAttempts && entry.LockUntil == nil {
			until := now.Add(lockDuration)
			entry.LockUntil = &until
			locked = true
			st.AppendEvent(model.AuthEvent{
				Time: now, Type: model.EventLockout,
				Email: email, DeviceID: deviceID, IP: ip,
			})
		}
		st.Auth.Throttles[key] = entry
		return locked, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// ClearThrottle resets the triple after a successful login.
func (m *Manager) ClearThrottle(email, deviceID, ip string) error {
	key := model.ThrottleKey(email, deviceID, ip)
	_, err := m.store.Transact(func(st *model.State) (any, error) {
		delete(st.Auth.Throttles, key)
		return nil, nil
	})
	return err
}
