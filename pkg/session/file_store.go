package session

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

// FileStore keeps the session table in a JSON object mapping id to record.
//
// Every mutation rewrites the whole file through a temp file and rename, so a
// crash leaves either the old or the new table. If the write fails the
// in-memory change is rolled back and ErrStorageFailure is returned.
type FileStore struct {
	path string
	opts storeOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

// OpenFileStore loads the table at path, dropping expired and undecodable
// entries. A missing file is an empty table; a file that is not valid JSON is
// logged and replaced on the next write.
func OpenFileStore(ctx context.Context, path string, opts ...StoreOption) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		opts:     buildStoreOptions(opts),
		sessions: make(map[string]*Session),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, errors.Join(ErrStorageFailure, err)
	}

	var table map[string]record
	if err := json.Unmarshal(data, &table); err != nil {
		s.opts.logger.WarnContext(ctx, "session table is corrupt, starting empty",
			logger.Path(path),
			logger.Error(err),
		)
		return s, nil
	}

	now := s.opts.now()
	pruned := 0
	for id, rec := range table {
		sess, err := decodeRecord(id, rec)
		if err != nil {
			s.opts.logger.WarnContext(ctx, "skipping corrupt session record",
				logger.Path(path),
				logger.SessionID(id),
				logger.Error(err),
			)
			pruned++
			continue
		}
		if sess.IsExpired(now) {
			pruned++
			continue
		}
		s.sessions[id] = sess
	}

	if pruned > 0 {
		if err := s.persist(); err != nil {
			s.opts.logger.WarnContext(ctx, "failed to rewrite pruned session table",
				logger.Path(path),
				logger.Error(err),
			)
		}
	}
	s.opts.logger.InfoContext(ctx, "session table loaded",
		logger.Path(path),
		logger.Count(len(s.sessions)),
	)
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.sessions[session.ID]
	s.sessions[session.ID] = session.clone()
	return s.commit(ctx, session.ID, prev, existed)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.clone(), nil
}

func (s *FileStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.sessions[session.ID]
	if !ok {
		return ErrSessionNotFound
	}
	s.sessions[session.ID] = session.clone()
	return s.commit(ctx, session.ID, prev, true)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	return s.commit(ctx, id, prev, true)
}

func (s *FileStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[string]*Session)
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			removed[id] = session
			delete(s.sessions, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}
	if err := s.persist(); err != nil {
		for id, session := range removed {
			s.sessions[id] = session
		}
		s.logWriteFailure(ctx, err)
		return 0, err
	}
	return len(removed), nil
}

// Len returns the number of sessions in the table.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// commit persists the table after a single-entry change to id, restoring prev
// if the write fails. Caller holds s.mu.
func (s *FileStore) commit(ctx context.Context, id string, prev *Session, existed bool) error {
	err := s.persist()
	if err == nil {
		return nil
	}
	if existed {
		s.sessions[id] = prev
	} else {
		delete(s.sessions, id)
	}
	s.logWriteFailure(ctx, err)
	return err
}

func (s *FileStore) logWriteFailure(ctx context.Context, err error) {
	s.opts.logger.ErrorContext(ctx, "failed to write session table",
		logger.Path(s.path),
		logger.Error(err),
	)
}

// persist writes the table atomically. Caller holds s.mu.
func (s *FileStore) persist() error {
	table := make(map[string]record, len(s.sessions))
	for id, session := range s.sessions {
		table[id] = encodeRecord(session)
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}
