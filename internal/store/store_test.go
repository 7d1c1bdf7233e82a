package store

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, path
}

func TestOpenSeedsAdmin(t *testing.T) {
	s, path := openTestStore(t)

	st := s.Read()
	admin := st.UserByEmail("admin@example.com")
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, model.StatusActive, admin.AccountStatus)
	assert.False(t, admin.HasPassword())

	_, err := os.Stat(path)
	assert.NoError(t, err, "open must write the durable file")
}

func TestTransactSerializesConcurrentWrites(t *testing.T) {
	s, _ := openTestStore(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Transact(func(st *model.State) (any, error) {
				st.Records["plants"] = append(st.Records["plants"], model.Record{
					ID:     time.Now().String(),
					Fields: map[string]any{"n": len(st.Records["plants"])},
				})
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Read().Records["plants"], n)
}

func TestReadReturnsIsolatedCopy(t *testing.T) {
	s, _ := openTestStore(t)

	snapshot := s.Read()
	snapshot.Auth.Users[0].Email = "tampered@example.com"
	snapshot.Records["plants"] = append(snapshot.Records["plants"], model.Record{ID: "x"})

	fresh := s.Read()
	assert.Equal(t, "admin@example.com", fresh.Auth.Users[0].Email)
	assert.Empty(t, fresh.Records["plants"])
}

func TestFailedTransactDiscardsDraft(t *testing.T) {
	s, _ := openTestStore(t)

	wantErr := assert.AnError
	_, err := s.Transact(func(st *model.State) (any, error) {
		st.Records["plants"] = append(st.Records["plants"], model.Record{ID: "doomed"})
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, s.Read().Records["plants"])

	// The queue keeps working after a failed transaction.
	_, err = s.Transact(func(st *model.State) (any, error) {
		st.Records["plants"] = append(st.Records["plants"], model.Record{ID: "survivor"})
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, s.Read().Records["plants"], 1)
}

func TestCorruptFileSeedsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	defer s.Close()

	st := s.Read()
	require.NotNil(t, st.UserByEmail("admin@example.com"))
	assert.Empty(t, st.Records)
}

func TestOrphanedTempFileIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	_, err = s.Transact(func(st *model.State) (any, error) {
		st.Records["plants"] = append(st.Records["plants"], model.Record{ID: "kept"})
		return nil, nil
	})
	require.NoError(t, err)
	s.Close()

	// A crash between temp write and rename leaves a stray temp file next to
	// an intact durable file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json.tmp-crash"), []byte("garbage"), 0o600))

	reopened, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	defer reopened.Close()
	assert.Len(t, reopened.Read().Records["plants"], 1)
}

func TestDataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	_, err = s.Transact(func(st *model.State) (any, error) {
		st.Records["care_logs"] = append(st.Records["care_logs"], model.Record{
			ID:     "log-1",
			Fields: map[string]any{"note": "watered"},
		})
		return nil, nil
	})
	require.NoError(t, err)
	s.Close()

	reopened, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	defer reopened.Close()

	recs := reopened.Read().Records["care_logs"]
	require.Len(t, recs, 1)
	assert.Equal(t, "watered", recs[0].Fields["note"])
}

func TestMigrateFlatLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	legacy := `{
		"users": [{"id": "u1", "email": "old@example.com", "role": "user", "account_status": "active"}],
		"plants": [{"id": "p1", "created_by": "u1", "fields": {"name": "fern"}}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	s, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	defer s.Close()

	st := s.Read()
	assert.Equal(t, schemaVersion, st.SchemaVersion)
	require.NotNil(t, st.UserByEmail("old@example.com"))
	require.NotNil(t, st.UserByEmail("admin@example.com"), "admin invariant after migration")
	require.Len(t, st.Records["plants"], 1)
	assert.Equal(t, "fern", st.Records["plants"][0].Fields["name"])
}

func TestEnsureShapeRestoresAdminInvariant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	// Admin demoted and suspended on disk; Open must repair both.
	doc := `{
		"schema_version": 1,
		"auth": {"users": [{"id": "a1", "email": "admin@example.com", "role": "user", "account_status": "suspended"}]},
		"records": {}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	s, err := Open(path, SeedConfig{AdminEmail: "admin@example.com"}, testLogger())
	require.NoError(t, err)
	defer s.Close()

	admin := s.Read().UserByEmail("admin@example.com")
	require.NotNil(t, admin)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, model.StatusActive, admin.AccountStatus)
}
