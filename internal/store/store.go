package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const storeFileName = "settings.json"

// ErrNotFound is returned for an integer setting that was never written.
var ErrNotFound = errors.New("setting not found")

type settingsData struct {
	Ints              map[string]int  `json:"ints"`
	LocationProviders map[string]bool `json:"location_providers"`
	LastUpdate        time.Time       `json:"last_update"`
}

// Store is a JSON file backed settings store. Every write is flushed to disk.
type Store struct {
	mu   sync.Mutex
	path string
	data settingsData
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		data: settingsData{
			Ints:              make(map[string]int),
			LocationProviders: make(map[string]bool),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := json.Unmarshal(data, &s.data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.data.Ints == nil {
		s.data.Ints = make(map[string]int)
	}
	if s.data.LocationProviders == nil {
		s.data.LocationProviders = make(map[string]bool)
	}
	return s, nil
}

func (s *Store) Int(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data.Ints[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return v, nil
}

func (s *Store) PutInt(key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Ints[key] = value
	return s.save()
}

// SetDefaultInt writes value only if key has never been set.
func (s *Store) SetDefaultInt(key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Ints[key]; ok {
		return nil
	}
	s.data.Ints[key] = value
	return s.save()
}

// LocationProviderEnabled reports false for a provider never written.
func (s *Store) LocationProviderEnabled(provider string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.LocationProviders[provider], nil
}

func (s *Store) SetLocationProviderEnabled(provider string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.LocationProviders[provider] = enabled
	return s.save()
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	s.data.LastUpdate = time.Now()

	data, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// DefaultPath is the per-user location of the settings file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".cache", "powerwidget2mqtt", storeFileName), nil
}
