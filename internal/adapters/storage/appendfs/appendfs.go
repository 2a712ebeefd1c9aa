package appendfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"multipart-upload/internal/core/domain"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Store writes appended parts into files of a billy filesystem. Part 1
// (re)creates the file, every later part must follow the previous one.
// Files idle for longer than idleAfter are forgotten when a new upload starts,
// a later part for them is then out of order.
type Store struct {
	fs        billy.Filesystem
	idleAfter time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu   sync.Mutex
	next map[string]expectedPart
}

type expectedPart struct {
	index     int
	touchedAt time.Time
}

// NewStore returns a Store rooted at dir on the local disk
func NewStore(dir string, idleAfter time.Duration, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return NewStoreWithFS(osfs.New(dir), idleAfter, logger), nil
}

// NewStoreWithFS returns a Store on top of fs. A zero idleAfter never forgets.
func NewStoreWithFS(fs billy.Filesystem, idleAfter time.Duration, logger *slog.Logger) *Store {
	return newStore(fs, idleAfter, time.Now, logger)
}

func newStore(fs billy.Filesystem, idleAfter time.Duration, now func() time.Time, logger *slog.Logger) *Store {
	return &Store{
		fs:        fs,
		idleAfter: idleAfter,
		now:       now,
		logger:    logger,
		next:      make(map[string]expectedPart),
	}
}

// AppendPart writes data at the end of fileName
func (s *Store) AppendPart(_ context.Context, fileName string, partIndex int, data []byte) error {
	name, err := sanitize(fileName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	flag := os.O_WRONLY | os.O_APPEND
	if partIndex == 1 {
		flag = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		s.forgetIdle(now)
	} else if expected := s.next[name].index; partIndex != expected {
		return fmt.Errorf("%w: got part %d, expected %d", domain.ErrOutOfOrderPart, partIndex, expected)
	}

	f, err := s.fs.OpenFile(name, flag, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write part %d of %s: %w", partIndex, name, err)
	}

	s.next[name] = expectedPart{index: partIndex + 1, touchedAt: now}
	s.logger.Debug("part appended", "file_name", name, "part_index", partIndex, "size", len(data))
	return nil
}

// Delete removes fileName, a missing file is not an error
func (s *Store) Delete(_ context.Context, fileName string) error {
	name, err := sanitize(fileName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.next, name)
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	s.logger.Info("partial file deleted", "file_name", name)
	return nil
}

// forgetIdle drops files finished or abandoned for longer than idleAfter.
// Callers hold mu.
func (s *Store) forgetIdle(now time.Time) {
	if s.idleAfter <= 0 {
		return
	}
	for name, expected := range s.next {
		if now.Sub(expected.touchedAt) > s.idleAfter {
			delete(s.next, name)
		}
	}
}

// sanitize only accepts plain file names
func sanitize(fileName string) (string, error) {
	name := strings.TrimSpace(fileName)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFileName, fileName)
	}
	return name, nil
}
