package userstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrymomot/authcore/pkg/logger"
)

// Header is the column layout of the users file.
var Header = []string{"user_id", "username", "password_hash", "email", "created_at"}

const (
	colID = iota
	colUsername
	colHash
	colEmail
	colCreatedAt
)

// createdAtLayouts lists accepted created_at encodings, newest first. The
// zone-less layouts cover records written by the previous implementation.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// FileStore persists users as CSV rows, one per user, under a header row.
//
// All records are indexed in memory at open. Create holds the write lock
// across the uniqueness check and the durable append, so the index and the
// file never disagree about which username won.
type FileStore struct {
	path string
	opts options

	mu           sync.RWMutex
	ix           *index
	needsNewline bool
	openAppend   func(path string) (appendFile, error)
}

// appendFile is the part of *os.File the append path uses.
type appendFile interface {
	io.Writer
	Stat() (fs.FileInfo, error)
	Truncate(size int64) error
	Sync() error
	Close() error
}

func openAppend(path string) (appendFile, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
}

// OpenFile opens (or creates) the CSV users file at path and loads it.
// Corrupt rows are skipped with a warning.
func OpenFile(ctx context.Context, path string, opts ...Option) (*FileStore, error) {
	s := &FileStore{path: path, opts: buildOptions(opts), ix: newIndex(), openAppend: openAppend}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrStorageFailure, err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Join(ErrStorageFailure, err)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(Header)
	w.Flush()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return errors.Join(ErrStorageFailure, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return errors.Join(ErrStorageFailure, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return errors.Join(ErrStorageFailure, err)
	}
	return f.Close()
}

// Reload re-reads the file and replaces the in-memory index. It holds the
// write lock throughout, so no Create lands between the read and the swap.
func (s *FileStore) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}

	ix, skipped := s.parse(ctx, data)
	s.ix = ix
	s.needsNewline = len(data) > 0 && data[len(data)-1] != '\n'

	s.opts.logger.InfoContext(ctx, "users file loaded",
		logger.Path(s.path),
		logger.Count(len(ix.order)),
		slog.Int("skipped", skipped),
	)
	return nil
}

// parse decodes every row it can. The header row may reorder columns; a
// file without a header is read in the canonical column order.
func (s *FileStore) parse(ctx context.Context, data []byte) (*index, int) {
	ix := newIndex()
	skipped := 0

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	cols := []int{colID, colUsername, colHash, colEmail, colCreatedAt}
	first := true

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				s.warnCorrupt(ctx, 0, err)
				break
			}
			skipped++
			s.warnCorrupt(ctx, perr.Line, err)
			continue
		}
		line, _ := r.FieldPos(0)

		if first {
			first = false
			if mapped, ok := headerColumns(row); ok {
				cols = mapped
				continue
			}
		}

		rec, err := decodeRow(row, cols)
		if err == nil {
			err = ix.check(rec)
		}
		if err != nil {
			skipped++
			s.warnCorrupt(ctx, line, err)
			continue
		}
		ix.add(rec)
	}
	return ix, skipped
}

func (s *FileStore) warnCorrupt(ctx context.Context, line int, err error) {
	s.opts.logger.WarnContext(ctx, "skipping corrupt user record",
		logger.Path(s.path),
		logger.Line(line),
		logger.Error(errors.Join(ErrCorrupt, err)),
	)
}

// headerColumns maps header names to positions. It reports false when row is
// not a header.
func headerColumns(row []string) ([]int, bool) {
	pos := make(map[string]int, len(row))
	for i, name := range row {
		pos[name] = i
	}
	cols := make([]int, len(Header))
	for i, name := range Header {
		p, ok := pos[name]
		if !ok {
			return nil, false
		}
		cols[i] = p
	}
	return cols, true
}

func decodeRow(row []string, cols []int) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(row))
	}
	rec := Record{
		ID:           row[cols[colID]],
		Username:     row[cols[colUsername]],
		PasswordHash: row[cols[colHash]],
		Email:        row[cols[colEmail]],
	}
	if err := rec.validate(); err != nil {
		return Record{}, err
	}
	createdAt, err := parseCreatedAt(row[cols[colCreatedAt]])
	if err != nil {
		return Record{}, err
	}
	rec.CreatedAt = createdAt
	return rec, nil
}

func parseCreatedAt(v string) (time.Time, error) {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable created_at %q", v)
}

func (s *FileStore) Create(ctx context.Context, username, email, passwordHash string) (Record, error) {
	rec, err := s.opts.newRecord(username, email, passwordHash)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ix.check(rec); err != nil {
		return Record{}, err
	}
	if err := s.append(rec); err != nil {
		s.opts.logger.ErrorContext(ctx, "failed to append user record",
			logger.Path(s.path),
			logger.Username(rec.Username),
			logger.Error(err),
		)
		return Record{}, err
	}
	s.ix.add(rec)
	return rec, nil
}

// append writes rec to the end of the file and fsyncs. On failure the file
// is truncated back to its previous size. Caller holds s.mu.
func (s *FileStore) append(rec Record) error {
	var buf bytes.Buffer
	if s.needsNewline {
		buf.WriteByte('\n')
	}
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{
		rec.ID,
		rec.Username,
		rec.PasswordHash,
		rec.Email,
		rec.CreatedAt.Format(time.RFC3339Nano),
	})
	w.Flush()

	f, err := s.openAppend(s.path)
	if err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return errors.Join(ErrStorageFailure, err)
	}
	size := info.Size()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return s.rollback(f, size, err)
	}
	if err := f.Sync(); err != nil {
		return s.rollback(f, size, err)
	}
	if err := f.Close(); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	s.needsNewline = false
	return nil
}

// rollback drops whatever a failed append left past size. If the file cannot
// be cut back, the next append starts on a fresh line so a fragment stays a
// single corrupt row.
func (s *FileStore) rollback(f appendFile, size int64, cause error) error {
	errs := []error{ErrStorageFailure, cause}
	if err := f.Truncate(size); err != nil {
		s.needsNewline = true
		errs = append(errs, err)
	} else if err := f.Sync(); err != nil {
		errs = append(errs, err)
	}
	if err := f.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *FileStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.byUsername(username)
}

func (s *FileStore) FindByID(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.get(id)
}

func (s *FileStore) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.all(), nil
}
