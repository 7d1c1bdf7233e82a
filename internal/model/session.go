package model

import "time"

type Session struct {
	ID            string     `json:"id"`
	TokenHash     string     `json:"token_hash"`
	CSRFTokenHash string     `json:"csrf_token_hash"`
	UserID        string     `json:"user_id"`
	DeviceID      string     `json:"device_id"`
	IP            string     `json:"ip"`
	CreatedDate   time.Time  `json:"created_date"`
	LastActive    time.Time  `json:"last_active"`
	ExpiresAt     time.Time  `json:"expires_at"`
	RevokedDate   *time.Time `json:"revoked_date"`
}

// Usable reports whether the session may still authenticate requests:
// not revoked and not past its expiry.
func (s *Session) Usable(now time.Time) bool {
	return s.RevokedDate == nil && now.Before(s.ExpiresAt)
}

// DeviceSession tracks the last-seen fingerprint of a device per user.
// Presentation and audit only; never consulted for access control.
type DeviceSession struct {
	DeviceID   string    `json:"device_id"`
	UserID     string    `json:"user_id"`
	UserAgent  string    `json:"user_agent"`
	Platform   string    `json:"platform"`
	LastActive time.Time `json:"last_active"`
}

type PasswordResetToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}

// Valid reports whether the token is unused and unexpired.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

type LoginThrottle struct {
	Email        string     `json:"email"`
	DeviceID     string     `json:"device_id"`
	IP           string     `json:"ip"`
	Attempts     int        `json:"attempts"`
	FirstAttempt time.Time  `json:"first_attempt"`
	LockUntil    *time.Time `json:"lock_until"`
}

// ThrottleKey builds the map key for a (email, device, ip) triple.
func ThrottleKey(email, deviceID, ip string) string {
	return email + "|" + deviceID + "|" + ip
}

type PushSubscription struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Endpoint    string    `json:"endpoint"`
	P256dh      string    `json:"p256dh"`
	Auth        string    `json:"auth"`
	CreatedDate time.Time `json:"created_date"`
}
