package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session owns the scratch tree of one analysis run. Everything allocated
// through it lives under a single run directory that Close removes.
type Session struct {
	id   string
	root string

	once     sync.Once
	closeErr error
}

// New creates <root>/run-<uuid>.
func New(root string) (*Session, error) {
	id := uuid.NewString()
	dir := filepath.Join(root, "run-"+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}
	return &Session{id: id, root: dir}, nil
}

func (s *Session) ID() string {
	return s.id
}

// Root is the run directory.
func (s *Session) Root() string {
	return s.root
}

// Dir creates and returns a directory inside the run tree.
func (s *Session) Dir(parts ...string) (string, error) {
	dir := filepath.Join(append([]string{s.root}, parts...)...)
	rel, err := filepath.Rel(s.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("directory %s escapes run %s", dir, s.id)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// Close removes the run tree. Calling it again is a no-op.
func (s *Session) Close() error {
	s.once.Do(func() {
		s.closeErr = os.RemoveAll(s.root)
	})
	return s.closeErr
}
