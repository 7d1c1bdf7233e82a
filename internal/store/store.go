package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
)

// Store owns the single source of truth: an in-memory state tree plus a
// durable JSON file. All mutations funnel through one writer goroutine so
// that every transaction starts from the latest committed state and two
// transactions never persist from the same base.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex // guards current
	current *model.State

	ops  chan operation
	done chan struct{}
}

type operation struct {
	mutate func(*model.State) (any, error)
	reply  chan result
}

type result struct {
	value any
	err   error
}

// Open loads the backing file if present, seeds a fresh state otherwise
// (malformed JSON counts as absent), runs the migration chain, and rewrites
// the file once to normalize its shape. It fails only if the file cannot be
// written.
func Open(path string, seed SeedConfig, logger *slog.Logger) (*Store, error) {
	st, err := load(path, seed)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:    path,
		logger:  logger,
		current: st,
		ops:     make(chan operation),
		done:    make(chan struct{}),
	}

	// Normalizing rewrite: the on-disk shape always matches the current
	// schema after a successful Open.
	if err := persist(path, st); err != nil {
		return nil, fmt.Errorf("initial persist: %w", err)
	}

	go s.writeLoop()
	return s, nil
}

func load(path string, seed SeedConfig) (*model.State, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return seedState(seed)
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		// Corrupt content is treated as no existing state.
		return seedState(seed)
	}

	raw = migrate(raw)

	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize state: %w", err)
	}
	var st model.State
	if err := json.Unmarshal(normalized, &st); err != nil {
		return seedState(seed)
	}
	ensureShape(&st, seed)
	return &st, nil
}

// Read returns a deep, independent copy of the latest committed state.
// It never blocks on the write queue or on I/O.
func (s *Store) Read() *model.State {
	s.mu.RLock()
	st := s.current
	s.mu.RUnlock()

	clone, err := cloneState(st)
	if err != nil {
		// Cloning a state that round-tripped through JSON at commit time
		// cannot fail; treat it as a programming error.
		panic(fmt.Sprintf("store: clone state: %v", err))
	}
	return clone
}

// Transact runs the mutator against a deep-cloned draft of the latest
// committed state, serialized behind all other transactions. On success the
// draft replaces the in-memory state and is persisted atomically; on error
// the draft is discarded and the error is returned to this caller only.
func (s *Store) Transact(mutate func(*model.State) (any, error)) (any, error) {
	reply := make(chan result, 1)
	s.ops <- operation{mutate: mutate, reply: reply}
	r := <-reply
	return r.value, r.err
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for op := range s.ops {
		op.reply <- s.apply(op.mutate)
	}
}

func (s *Store) apply(mutate func(*model.State) (any, error)) result {
	s.mu.RLock()
	base := s.current
	s.mu.RUnlock()

	draft, err := cloneState(base)
	if err != nil {
		return result{err: fmt.Errorf("clone state: %w", err)}
	}

	value, err := mutate(draft)
	if err != nil {
		// Failed draft is discarded; the queue continues with the next
		// operation against the unchanged committed state.
		return result{err: err}
	}

	draft.UpdatedDate = time.Now().UTC()
	if err := persist(s.path, draft); err != nil {
		s.logger.Error("persist state", "error", err)
		return result{err: fmt.Errorf("persist state: %w", err)}
	}

	s.mu.Lock()
	s.current = draft
	s.mu.Unlock()
	return result{value: value}
}

// Close drains the write queue and stops the writer goroutine.
func (s *Store) Close() {
	close(s.ops)
	<-s.done
}

// Path returns the location of the durable file, for snapshot backups.
func (s *Store) Path() string { return s.path }

func cloneState(st *model.State) (*model.State, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	var out model.State
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out.Records == nil {
		out.Records = make(map[string][]model.Record)
	}
	if out.Auth.Throttles == nil {
		out.Auth.Throttles = make(map[string]model.LoginThrottle)
	}
	return &out, nil
}

// persist writes the state to a temp file in the same directory and renames
// it over the durable file. A crash mid-write leaves the previous file
// intact; the temp file is simply orphaned.
func persist(path string, st *model.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
