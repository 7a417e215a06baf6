// Package storage provides the durable key-value slot used for cart
// persistence. Last writer wins; there is no merge or conflict detection.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned by Read when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Slot is a flat key-value store. Values are opaque bytes; callers own the
// encoding.
type Slot interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Delete(key string) error
}

// Memory is an in-process Slot, used in tests and as a fallback when no data
// directory is available.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

// NewMemory creates an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Read(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Memory) Write(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.m[key] = v
	return nil
}

func (s *Memory) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// File stores each key as one file under a directory. Writes go through a
// temp file and rename so a crash never leaves a half-written slot.
type File struct {
	mu  sync.Mutex
	dir string
}

// NewFile creates the directory if needed and returns a file-backed slot.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

func (s *File) path(key string) string {
	// Keys are fixed identifiers like "cart"; flatten anything that would
	// escape the directory.
	key = strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, key+".json")
}

func (s *File) Read(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *File) Write(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (s *File) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
