package session

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
)

const (
	// DefaultTTL applies to sessions without "remember me".
	DefaultTTL = 24 * time.Hour
	// RememberTTL applies when the client asks to stay signed in.
	RememberTTL = 30 * 24 * time.Hour

	// touchInterval bounds how often a lookup writes last_active back.
	touchInterval = time.Minute
)

// Manager issues and validates sessions, passwords, reset tokens, and CSRF
// tokens. All state lives in the document store.
type Manager struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(st *store.Store, logger *slog.Logger) *Manager {
	return &Manager{store: st, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// NewSession carries the raw tokens back to the caller. They exist only in
// the response; the store keeps digests.
type NewSession struct {
	SessionID string
	Token     string
	CSRFToken string
	ExpiresAt time.Time
	NewDevice bool
}

// Create inserts a session for the user, pruning expired rows while it
// holds the write lock, and upserts the device-session record.
func (m *Manager) Create(userID, deviceID, ip, userAgent string, remember bool) (*NewSession, error) {
	token, err := credential.NewToken(credential.SessionTokenBytes)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	csrfToken, err := credential.NewToken(credential.CSRFTokenBytes)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	deviceID = credential.NormalizeDeviceID(deviceID)
	now := m.now()
	ttl := DefaultTTL
	if remember {
		ttl = RememberTTL
	}

	sess := model.Session{
		ID:            credential.NewID(),
		TokenHash:     credential.Digest(token),
		CSRFTokenHash: credential.Digest(csrfToken),
		UserID:        userID,
		DeviceID:      deviceID,
		IP:            ip,
		CreatedDate:   now,
		LastActive:    now,
		ExpiresAt:     now.Add(ttl),
	}

	v, err := m.store.Transact(func(st *model.State) (any, error) {
		pruneExpired(st, now)

		newDevice := true
		for i := range st.Auth.DeviceSessions {
			ds := &st.Auth.DeviceSessions[i]
			if ds.UserID == userID && ds.DeviceID == deviceID {
				ds.UserAgent = userAgent
				ds.Platform = platformFromUserAgent(userAgent)
				ds.LastActive = now
				newDevice = false
				break
			}
		}
		if newDevice {
			st.Auth.DeviceSessions = append(st.Auth.DeviceSessions, model.DeviceSession{
				DeviceID:   deviceID,
				UserID:     userID,
				UserAgent:  userAgent,
				Platform:   platformFromUserAgent(userAgent),
				LastActive: now,
			})
		}

		st.Auth.Sessions = append(st.Auth.Sessions, sess)
		return newDevice, nil
	})
	if err != nil {
		return nil, err
	}

	return &NewSession{
		SessionID: sess.ID,
		Token:     token,
		CSRFToken: csrfToken,
		ExpiresAt: sess.ExpiresAt,
		NewDevice: v.(bool),
	}, nil
}

// Resolve looks up a raw cookie token and returns the owning user and
// session. Expired, revoked, and suspended-account sessions are rejected.
// A best-effort touch updates last_active; its failure never fails the
// lookup.
func (m *Manager) Resolve(rawToken string) (*model.User, *model.Session, error) {
	if rawToken == "" {
		return nil, nil, apperror.Unauthorized("missing session")
	}
	now := m.now()
	hash := credential.Digest(rawToken)

	st := m.store.Read()
	sess := st.SessionByTokenHash(hash)
	if sess == nil || !sess.Usable(now) {
		return nil, nil, apperror.Unauthorized("invalid or expired session")
	}
	user := st.UserByID(sess.UserID)
	if user == nil {
		return nil, nil, apperror.Unauthorized("invalid or expired session")
	}
	if user.AccountStatus == model.StatusSuspended {
		return nil, nil, apperror.Unauthorized("account suspended")
	}

	if now.Sub(sess.LastActive) > touchInterval {
		if _, err := m.store.Transact(func(draft *model.State) (any, error) {
			if live := draft.SessionByID(sess.ID); live != nil && live.Usable(now) {
				live.LastActive = now
			}
			for i := range draft.Auth.DeviceSessions {
				ds := &draft.Auth.DeviceSessions[i]
				if ds.UserID == sess.UserID && ds.DeviceID == sess.DeviceID {
					ds.LastActive = now
				}
			}
			return nil, nil
		}); err != nil {
			m.logger.Warn("session touch", "error", err)
		}
	}

	return user, sess, nil
}

// VerifyCSRF checks a header token against the digest bound to this
// session. CSRF protection is strictly per-session.
func (m *Manager) VerifyCSRF(sess *model.Session, rawToken string) error {
	if rawToken == "" {
		return apperror.CSRF()
	}
	if !credential.DigestEqual(credential.Digest(rawToken), sess.CSRFTokenHash) {
		return apperror.CSRF()
	}
	return nil
}

// Revoke marks a session revoked. The row is kept for the audit trail.
func (m *Manager) Revoke(sessionID string) error {
	now := m.now()
	_, err := m.store.Transact(func(st *model.State) (any, error) {
		sess := st.SessionByID(sessionID)
		if sess == nil {
			return nil, apperror.NotFound("session not found")
		}
		if sess.RevokedDate == nil {
			sess.RevokedDate = &now
			st.AppendEvent(model.AuthEvent{
				Time: now, Type: model.EventSessionRevoked,
				UserID: sess.UserID, DeviceID: sess.DeviceID, IP: sess.IP,
			})
		}
		return nil, nil
	})
	return err
}

// Logout revokes the caller's own session, recording a logout rather than
// a revocation in the audit trail.
func (m *Manager) Logout(sessionID string) error {
	now := m.now()
	_, err := m.store.Transact(func(st *model.State) (any, error) {
		sess := st.SessionByID(sessionID)
		if sess == nil {
			return nil, apperror.NotFound("session not found")
		}
		if sess.RevokedDate == nil {
			sess.RevokedDate = &now
			st.AppendEvent(model.AuthEvent{
				Time: now, Type: model.EventLogout,
				UserID: sess.UserID, DeviceID: sess.DeviceID, IP: sess.IP,
			})
		}
		return nil, nil
	})
	return err
}

// RevokeAllForUser revokes every usable session of the user except the
// given one (pass "" to revoke all).
func (m *Manager) RevokeAllForUser(userID, exceptSessionID string) error {
	now := m.now()
	_, err := m.store.Transact(func(st *model.State) (any, error) {
		revokeAll(st, userID, exceptSessionID, now)
		return nil, nil
	})
	return err
}

// revokeAll is the in-transaction form, shared with the password flows.
func revokeAll(st *model.State, userID, exceptSessionID string, now time.Time) {
	for i := range st.Auth.Sessions {
		sess := &st.Auth.Sessions[i]
		if sess.UserID == userID && sess.ID != exceptSessionID && sess.RevokedDate == nil {
			revoked := now
			sess.RevokedDate = &revoked
		}
	}
}

func pruneExpired(st *model.State, now time.Time) {
	kept := st.Auth.Sessions[:0]
	for _, sess := range st.Auth.Sessions {
		if now.Before(sess.ExpiresAt) {
			kept = append(kept, sess)
		}
	}
	st.Auth.Sessions = kept

	keptTokens := st.Auth.ResetTokens[:0]
	for _, t := range st.Auth.ResetTokens {
		if now.Before(t.ExpiresAt) {
			keptTokens = append(keptTokens, t)
		}
	}
	st.Auth.ResetTokens = keptTokens
}

func platformFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		return "ios"
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "mac os"):
		return "macos"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return ""
	}
}
