package model

import "time"

// MaxAuthEvents bounds the audit ring kept in the state tree.
const MaxAuthEvents = 500

type AuthEvent struct {
	Time     time.Time `json:"time"`
	Type     string    `json:"type"`
	UserID   string    `json:"user_id,omitempty"`
	Email    string    `json:"email,omitempty"`
	DeviceID string    `json:"device_id,omitempty"`
	IP       string    `json:"ip,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

const (
	EventLogin          = "login"
	EventLoginFailed    = "login_failed"
	EventLockout        = "lockout"
	EventLogout         = "logout"
	EventRegister       = "register"
	EventPasswordChange = "password_change"
	EventPasswordReset  = "password_reset"
	EventSessionRevoked = "session_revoked"
	EventAccountStatus  = "account_status"
	EventNewDevice      = "new_device"
)
