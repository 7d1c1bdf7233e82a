package session

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/apperror"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
)

const testPassword = "Gr0wth!spurt"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(path, store.SeedConfig{AdminEmail: "admin@example.com"}, logger)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return NewManager(st, logger)
}

func register(t *testing.T, m *Manager, email string) (*model.User, *NewSession) {
	t.Helper()
	user, ns, err := m.Register(email, testPassword, "dev-1", "10.0.0.1", "test-agent linux")
	require.NoError(t, err)
	return user, ns
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperror.From(err).Status
}

func TestCreateAndResolve(t *testing.T) {
	m := newTestManager(t)
	user, ns := register(t, m, "fern@example.com")

	resolved, sess, err := m.Resolve(ns.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, ns.SessionID, sess.ID)

	_, _, err = m.Resolve("not-a-real-token")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, _, err = m.Resolve("")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestStoreKeepsOnlyTokenDigests(t *testing.T) {
	m := newTestManager(t)
	_, ns := register(t, m, "fern@example.com")

	sess := m.store.Read().SessionByID(ns.SessionID)
	require.NotNil(t, sess)
	assert.NotEqual(t, ns.Token, sess.TokenHash)
	assert.NotEqual(t, ns.CSRFToken, sess.CSRFTokenHash)
	assert.Len(t, sess.TokenHash, 64)
}

func TestResolveRejectsExpired(t *testing.T) {
	m := newTestManager(t)
	_, ns := register(t, m, "fern@example.com")

	m.now = func() time.Time { return time.Now().UTC().Add(DefaultTTL + time.Minute) }
	_, _, err := m.Resolve(ns.Token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestResolveRejectsRevoked(t *testing.T) {
	m := newTestManager(t)
	_, ns := register(t, m, "fern@example.com")

	require.NoError(t, m.Revoke(ns.SessionID))
	_, _, err := m.Resolve(ns.Token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestResolveRejectsSuspendedAccount(t *testing.T) {
	m := newTestManager(t)
	user, ns := register(t, m, "fern@example.com")

	_, err := m.store.Transact(func(st *model.State) (any, error) {
		st.UserByID(user.ID).AccountStatus = model.StatusSuspended
		return nil, nil
	})
	require.NoError(t, err)

	_, _, err = m.Resolve(ns.Token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	m := newTestManager(t)
	user, nsA := register(t, m, "fern@example.com")
	nsB, err := m.Create(user.ID, "dev-2", "10.0.0.2", "other-agent", false)
	require.NoError(t, err)

	st := m.store.Read()
	sessA := st.SessionByID(nsA.SessionID)
	require.NotNil(t, sessA)

	assert.NoError(t, m.VerifyCSRF(sessA, nsA.CSRFToken))
	assert.Error(t, m.VerifyCSRF(sessA, nsB.CSRFToken), "another session's token must not pass")
	assert.Error(t, m.VerifyCSRF(sessA, ""))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	m := newTestManager(t)
	register(t, m, "fern@example.com")

	_, _, err := m.Register("Fern@Example.com", testPassword, "dev-2", "10.0.0.1", "agent")
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	m := newTestManager(t)
	_, _, err := m.Register("fern@example.com", "short", "dev-1", "10.0.0.1", "agent")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestLoginFlow(t *testing.T) {
	m := newTestManager(t)
	register(t, m, "fern@example.com")

	user, ns, err := m.Login("FERN@example.com", testPassword, "dev-1", "10.0.0.1", "agent", false)
	require.NoError(t, err)
	assert.Equal(t, "fern@example.com", user.Email)
	assert.False(t, ns.NewDevice, "device seen at registration")

	_, ns2, err := m.Login("fern@example.com", testPassword, "dev-9", "10.0.0.1", "agent", true)
	require.NoError(t, err)
	assert.True(t, ns2.NewDevice)
	assert.WithinDuration(t, time.Now().Add(RememberTTL), ns2.ExpiresAt, time.Minute)

	_, _, err = m.Login("fern@example.com", "Wr0ng!password", "dev-1", "10.0.0.1", "agent", false)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestPasswordResetFlow(t *testing.T) {
	m := newTestManager(t)
	_, ns := register(t, m, "fern@example.com")

	token, err := m.RequestPasswordReset("fern@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	const newPassword = "N3w!passphrase"
	require.NoError(t, m.CompletePasswordReset(token, newPassword))

	// All prior sessions are revoked.
	_, _, err = m.Resolve(ns.Token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// Old password is dead, new one works.
	_, _, err = m.Login("fern@example.com", testPassword, "dev-1", "10.0.0.1", "agent", false)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	_, _, err = m.Login("fern@example.com", newPassword, "dev-1", "10.0.0.1", "agent", false)
	assert.NoError(t, err)

	// Token is single-use.
	err = m.CompletePasswordReset(token, "An0ther!pass")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	m := newTestManager(t)
	token, err := m.RequestPasswordReset("nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, token)
}

func TestPasswordResetSupersedesPriorToken(t *testing.T) {
	m := newTestManager(t)
	register(t, m, "fern@example.com")

	first, err := m.RequestPasswordReset("fern@example.com")
	require.NoError(t, err)
	second, err := m.RequestPasswordReset("fern@example.com")
	require.NoError(t, err)

	err = m.CompletePasswordReset(first, "N3w!passphrase")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err), "superseded token must be dead")
	assert.NoError(t, m.CompletePasswordReset(second, "N3w!passphrase"))
}

func TestPasswordResetExpiry(t *testing.T) {
	m := newTestManager(t)
	register(t, m, "fern@example.com")

	token, err := m.RequestPasswordReset("fern@example.com")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC().Add(ResetTokenTTL + time.Minute) }
	err = m.CompletePasswordReset(token, "N3w!passphrase")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	m := newTestManager(t)
	user, current := register(t, m, "fern@example.com")
	other, err := m.Create(user.ID, "dev-2", "10.0.0.2", "agent", false)
	require.NoError(t, err)

	require.NoError(t, m.ChangePassword(user.ID, current.SessionID, testPassword, "N3w!passphrase"))

	_, _, err = m.Resolve(current.Token)
	assert.NoError(t, err, "current session survives")
	_, _, err = m.Resolve(other.Token)
	assert.Error(t, err, "other sessions are revoked")
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	m := newTestManager(t)
	user, current := register(t, m, "fern@example.com")

	err := m.ChangePassword(user.ID, current.SessionID, "Wr0ng!password", "N3w!passphrase")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}
