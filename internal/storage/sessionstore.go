package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/valter-silva-au/seqthink/pkg/models"
	"gopkg.in/yaml.v3"
)

// PersistenceError wraps an I/O or decoding failure on a session record.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SessionStoreManager defines the interface for the durable session store:
// one JSON record per session plus a YAML index, all under one directory.
type SessionStoreManager interface {
	Get(id string) (*models.AnalysisSession, bool)
	Persist(session *models.AnalysisSession) error
	List() []models.AnalysisSession
	Load() (warnings []error, err error)
	Dir() string
}

type fileSessionStore struct {
	dir string

	mu       sync.RWMutex
	sessions map[string]*models.AnalysisSession

	// synced holds, per session id, the record bytes this store last read
	// from or wrote to disk.
	synced map[string][]byte

	// writeLocks serialises writers per session id.
	locksMu    sync.Mutex
	writeLocks map[string]*sync.Mutex

	indexMu sync.Mutex
}

// NewSessionStoreManager creates a SessionStoreManager backed by files in dir.
func NewSessionStoreManager(dir string) SessionStoreManager {
	return &fileSessionStore{
		dir:        dir,
		sessions:   make(map[string]*models.AnalysisSession),
		synced:     make(map[string][]byte),
		writeLocks: make(map[string]*sync.Mutex),
	}
}

func (s *fileSessionStore) Dir() string {
	return s.dir
}

func (s *fileSessionStore) sessionPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *fileSessionStore) indexPath() string {
	return filepath.Join(s.dir, "index.yaml")
}

// Get returns a copy of the session with the given id.
func (s *fileSessionStore) Get(id string) (*models.AnalysisSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return session.Clone(), true
}

// List returns copies of all sessions, most recently updated first.
func (s *fileSessionStore) List() []models.AnalysisSession {
	s.mu.RLock()
	result := make([]models.AnalysisSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, *session.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Persist replaces the in-memory copy of session and writes it to disk. The
// in-memory copy is updated even when the write fails.
//
// Other processes, such as a CLI save while the server is running, may write
// the same record. Under the record's file lock Persist re-reads it, and if it
// changed since this store last read or wrote it, the two versions are merged
// against that last-synced base before writing.
func (s *fileSessionStore) Persist(session *models.AnalysisSession) error {
	if session.ID == "" {
		return fmt.Errorf("persisting session: ID must not be empty")
	}
	if strings.ContainsAny(session.ID, `/\`) || session.ID == "." || session.ID == ".." {
		return fmt.Errorf("persisting session: invalid ID %q", session.ID)
	}

	unlock := s.lockSession(session.ID)
	defer unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.remember(session)
		return &PersistenceError{Op: "creating session directory", Path: s.dir, Err: err}
	}
	unlockFile, err := lockFile(s.sessionPath(session.ID) + ".lock")
	if err != nil {
		s.remember(session)
		return &PersistenceError{Op: "locking session", Path: s.sessionPath(session.ID), Err: err}
	}
	defer func() { _ = unlockFile() }()

	merged := s.mergeWithDisk(session)
	s.remember(merged)

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encoding session", Path: session.ID, Err: err}
	}
	path := s.sessionPath(session.ID)
	if err := writeFileAtomic(path, data); err != nil {
		return &PersistenceError{Op: "writing session", Path: path, Err: err}
	}
	s.markSynced(session.ID, data)

	if err := s.saveIndex(); err != nil {
		return &PersistenceError{Op: "writing session index", Path: s.indexPath(), Err: err}
	}
	return nil
}

// remember stores a copy of session as the authoritative in-memory version.
func (s *fileSessionStore) remember(session *models.AnalysisSession) {
	s.mu.Lock()
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()
}

func (s *fileSessionStore) markSynced(id string, data []byte) {
	s.mu.Lock()
	s.synced[id] = data
	s.mu.Unlock()
}

// mergeWithDisk returns session unchanged unless its record on disk differs
// from the version this store last synced. Unreadable records are ignored and
// overwritten.
func (s *fileSessionStore) mergeWithDisk(session *models.AnalysisSession) *models.AnalysisSession {
	onDisk, err := os.ReadFile(s.sessionPath(session.ID))
	if err != nil {
		return session
	}

	s.mu.RLock()
	baseData, known := s.synced[session.ID]
	s.mu.RUnlock()
	if !known || bytes.Equal(onDisk, baseData) {
		return session
	}

	var base, theirs models.AnalysisSession
	if err := json.Unmarshal(baseData, &base); err != nil {
		return session
	}
	if err := json.Unmarshal(onDisk, &theirs); err != nil {
		return session
	}
	return mergeSessions(&base, session, &theirs)
}

// mergeSessions three-way merges ours and theirs, two descendants of base.
// A field ours left at its base value takes theirs; otherwise ours wins.
// Thoughts are append-only: thoughts theirs appended after base follow ours.
func mergeSessions(base, ours, theirs *models.AnalysisSession) *models.AnalysisSession {
	merged := ours.Clone()

	if ours.Title == base.Title {
		merged.Title = theirs.Title
	}
	if ours.Status == base.Status {
		merged.Status = theirs.Status
	}

	keys := make(map[string]struct{})
	for _, m := range []map[string]any{base.Metadata, ours.Metadata, theirs.Metadata} {
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	for k := range keys {
		baseVal, inBase := base.Metadata[k]
		ourVal, inOurs := ours.Metadata[k]
		if inBase != inOurs || !reflect.DeepEqual(baseVal, ourVal) {
			continue
		}
		if theirVal, ok := theirs.Metadata[k]; ok {
			if merged.Metadata == nil {
				merged.Metadata = make(map[string]any)
			}
			merged.Metadata[k] = theirVal
		} else {
			delete(merged.Metadata, k)
		}
	}

	if len(theirs.Thoughts) > len(base.Thoughts) {
		merged.Thoughts = append(merged.Thoughts, theirs.Thoughts[len(base.Thoughts):]...)
	}
	if theirs.UpdatedAt.After(merged.UpdatedAt) {
		merged.UpdatedAt = theirs.UpdatedAt
	}
	return merged
}

// lockSession acquires the write lock of one session id.
func (s *fileSessionStore) lockSession(id string) (unlock func()) {
	s.locksMu.Lock()
	l, ok := s.writeLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.writeLocks[id] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load reads every session record in the store directory, creating the
// directory if needed. Records that cannot be read or decoded are skipped
// and reported as warnings.
func (s *fileSessionStore) Load() ([]error, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "creating session directory", Path: s.dir, Err: err}
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &PersistenceError{Op: "reading session directory", Path: s.dir, Err: err}
	}

	var warnings []error
	loaded := make(map[string]*models.AnalysisSession)
	raw := make(map[string][]byte)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, &PersistenceError{Op: "reading session", Path: path, Err: err})
			continue
		}
		var session models.AnalysisSession
		if err := json.Unmarshal(data, &session); err != nil {
			warnings = append(warnings, &PersistenceError{Op: "parsing session", Path: path, Err: err})
			continue
		}
		if session.ID == "" {
			warnings = append(warnings, &PersistenceError{Op: "parsing session", Path: path, Err: fmt.Errorf("missing id")})
			continue
		}
		loaded[session.ID] = &session
		raw[session.ID] = data
	}

	s.mu.Lock()
	for id, session := range loaded {
		s.sessions[id] = session
		s.synced[id] = raw[id]
	}
	s.mu.Unlock()

	return warnings, nil
}

// saveIndex rewrites index.yaml from the in-memory sessions. index.lock
// guards the rewrite against other processes sharing the directory, such as
// a CLI save while the server is running.
func (s *fileSessionStore) saveIndex() error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	unlock, err := lockFile(filepath.Join(s.dir, "index.lock"))
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	sessions := s.List()
	index := models.SessionIndex{
		Version:  "1.0",
		Sessions: make([]models.SessionIndexEntry, len(sessions)),
	}
	for i, session := range sessions {
		index.Sessions[i] = models.SessionIndexEntry{
			ID:           session.ID,
			Title:        session.Title,
			Kind:         session.Kind,
			Status:       session.Status,
			ThoughtCount: len(session.Thoughts),
			Updated:      session.UpdatedAt,
		}
	}

	data, err := yaml.Marshal(&index)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.indexPath(), data)
}

// LoadIndex reads the YAML index from dir without decoding session records.
// A missing index yields an empty one.
func LoadIndex(dir string) (*models.SessionIndex, error) {
	index := &models.SessionIndex{Version: "1.0"}
	data, err := os.ReadFile(filepath.Join(dir, "index.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return index, nil
		}
		return nil, fmt.Errorf("reading session index: %w", err)
	}
	if err := yaml.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("parsing session index: %w", err)
	}
	return index, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place so readers never observe a partial record.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
