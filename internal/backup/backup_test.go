package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/store"
)

type fakeS3 struct {
	mu      sync.Mutex
	puts    int
	lastKey string
	body    []byte
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.puts++
	f.lastKey = *input.Key
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func newTestManager(t *testing.T, client s3Client) (*Manager, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"),
		store.SeedConfig{AdminEmail: "admin@example.com"}, logger)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	m := NewManager(Config{Interval: time.Hour}, st, logger)
	m.client = client
	m.status.State = StateIdle
	m.backoff = time.Millisecond
	return m, st
}

func TestBackupNowUploadsSnapshot(t *testing.T) {
	fake := &fakeS3{}
	m, st := newTestManager(t, fake)

	_, err := st.Transact(func(draft *model.State) (any, error) {
		draft.Records["plants"] = append(draft.Records["plants"], model.Record{ID: "p1"})
		return nil, nil
	})
	require.NoError(t, err)

	require.NoError(t, m.BackupNow(context.Background()))
	assert.Equal(t, 1, fake.puts)
	assert.Contains(t, fake.lastKey, "verdant/")

	var snapshot model.State
	require.NoError(t, json.Unmarshal(fake.body, &snapshot))
	assert.Len(t, snapshot.Records["plants"], 1)

	status := m.Status()
	assert.Equal(t, StateIdle, status.State)
	assert.NotNil(t, status.LastBackup)
	assert.False(t, status.InProgress)
}

func TestBackupNowRecordsFailure(t *testing.T) {
	fake := &fakeS3{err: errors.New("bucket on fire")}
	m, _ := newTestManager(t, fake)

	err := m.BackupNow(context.Background())
	require.Error(t, err)

	status := m.Status()
	assert.Equal(t, StateError, status.State)
	assert.Contains(t, status.Error, "bucket on fire")
	assert.False(t, status.InProgress)
}

func TestBackupDisabledWithoutCredentials(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(filepath.Join(t.TempDir(), "state.json"),
		store.SeedConfig{AdminEmail: "admin@example.com"}, logger)
	require.NoError(t, err)
	defer st.Close()

	m := NewManager(Config{}, st, logger)
	assert.False(t, m.Enabled())
	assert.Error(t, m.BackupNow(context.Background()))
}
