package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is the key/value store a cart is persisted in.
type Storage interface {
	// Get reports false when the key is absent.
	Get(c context.Context, key string) ([]byte, bool, error)
	Set(c context.Context, key string, value []byte) error
	Remove(c context.Context, key string) error
}

type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string][]byte{}}
}

func (m *MemoryStorage) Get(c context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryStorage) Set(c context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) Remove(c context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStorage keeps every key in one json object on disk. Writes replace the file atomically.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) read() (map[string]json.RawMessage, error) {
	values := map[string]json.RawMessage{}
	content, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed reading file=%s with error=%w", f.path, err)
	}
	if len(content) == 0 {
		return values, nil
	}
	if err = json.Unmarshal(content, &values); err != nil {
		return nil, fmt.Errorf("failed decoding file=%s with error=%w", f.path, err)
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]json.RawMessage) error {
	content, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed encoding file=%s with error=%w", f.path, err)
	}
	if err = os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed creating dir of file=%s with error=%w", f.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed creating temp file with error=%w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed writing temp file with error=%w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed closing temp file with error=%w", err)
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed replacing file=%s with error=%w", f.path, err)
	}
	return nil
}

func (f *FileStorage) Get(c context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return nil, false, err
	}
	value, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (f *FileStorage) Set(c context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("failed storing key=%s with error=value is not json", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = json.RawMessage(value)
	return f.write(values)
}

func (f *FileStorage) Remove(c context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}
