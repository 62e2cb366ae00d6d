// Package store persists session part data as JSON on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"go.uber.org/zap"

	"github.com/tessro/stave/internal/core"
)

const (
	// DefaultFileName is the default name for the session file.
	DefaultFileName = "parts.json"
)

// FileStore saves parts to a JSON file. With a debounce interval, bursts of
// saves collapse into one write of the latest data.
type FileStore struct {
	path   string
	logger *zap.Logger

	debounced func(func())

	mu      sync.Mutex
	pending []core.PartData
	dirty   bool
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithDebounce delays writes until saves have been quiet for d.
func WithDebounce(d time.Duration) Option {
	return func(s *FileStore) {
		if d > 0 {
			s.debounced = debounce.New(d)
		}
	}
}

// WithLogger sets the logger used for deferred write failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// DefaultPath returns ~/.config/stave/parts.json or the platform equivalent.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "stave", DefaultFileName), nil
}

// NewFileStore creates a store at path, or at DefaultPath when path is empty.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	s := &FileStore{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save persists data, immediately or after the debounce interval.
func (s *FileStore) Save(data []core.PartData) error {
	if s.debounced == nil {
		return s.write(data)
	}
	s.mu.Lock()
	s.pending = data
	s.dirty = true
	s.mu.Unlock()
	s.debounced(func() {
		if err := s.Flush(); err != nil {
			s.logger.Error("failed to save session", zap.String("path", s.path), zap.Error(err))
		}
	})
	return nil
}

// Flush writes any save still waiting on the debounce interval.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	data, dirty := s.pending, s.dirty
	s.pending, s.dirty = nil, false
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	return s.write(data)
}

func (s *FileStore) write(data []core.PartData) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if data == nil {
		data = []core.PartData{}
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, b, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads the saved parts. It returns nil data when nothing was saved.
func (s *FileStore) Load() ([]core.PartData, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	data, err := core.DecodeParts(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return data, nil
}

// Delete removes the session file.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	s.pending, s.dirty = nil, false
	s.mu.Unlock()
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Exists returns true if a session file exists.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Stat returns file info for the session file.
func (s *FileStore) Stat() (os.FileInfo, error) {
	return os.Stat(s.path)
}

// Path returns the path to the session file.
func (s *FileStore) Path() string {
	return s.path
}
