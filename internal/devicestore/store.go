package devicestore

import (
	"fmt"
	"os"
	"sync"

	"github.com/worksdev/portal/internal/configs"
)

// Well-known keys.
const (
	KeyPrivateKey   = "privateKey"
	KeyUserName     = "user_name"
	KeyUserEmail    = "user_email"
	KeyUserRole     = "user_role"
	KeyAuthCodeID   = "auth_code_id"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Store is a string key/value store local to this device.
type Store interface {
	// Get returns the value and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

type deviceFile struct {
	Values map[string]string `toml:"values"`
}

// FileStore persists values to a TOML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *FileStore) load() (map[string]string, error) {
	file := deviceFile{Values: make(map[string]string)}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return file.Values, nil
	}

	if err := configs.LoadTOML(s.path, &file); err != nil {
		return nil, fmt.Errorf("failed to load device store at %s: %w", s.path, err)
	}
	if file.Values == nil {
		file.Values = make(map[string]string)
	}
	return file.Values, nil
}

func (s *FileStore) save(values map[string]string) error {
	if err := configs.SaveTOML(s.path, deviceFile{Values: values}); err != nil {
		return fmt.Errorf("failed to save device store at %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps values in memory only.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
