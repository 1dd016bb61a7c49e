package user_settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"novaremote/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
)

// Service manages persistence and retrieval of per-user overrides.
type Service struct {
	mu       sync.RWMutex
	fs       afero.Fs
	path     string
	settings map[string]models.UserSettings
}

// NewService creates a user settings service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	return NewServiceWithFs(afero.NewOsFs(), storageDir)
}

// NewServiceWithFs is NewService on an arbitrary filesystem.
func NewServiceWithFs(fs afero.Fs, storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create user settings dir: %w", err)
	}

	svc := &Service{
		fs:       fs,
		path:     filepath.Join(storageDir, "user_settings.json"),
		settings: make(map[string]models.UserSettings),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// Get returns the user's override, or nil if none is stored.
func (s *Service) Get(userID string) (*models.UserSettings, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if settings, ok := s.settings[userID]; ok {
		out := settings
		return &out, nil
	}

	return nil, nil
}

// HasOverrides returns true if the user has custom settings stored.
func (s *Service) HasOverrides(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.settings[userID]
	return exists
}

// UsersWithOverrides lists the users that have an override stored, sorted.
func (s *Service) UsersWithOverrides() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.settings))
	for userID := range s.settings {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Update saves the user's override.
// If the override is empty (no field set), the user entry is deleted instead.
func (s *Service) Update(userID string, settings models.UserSettings) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.IsEmpty() {
		delete(s.settings, userID)
	} else {
		s.settings[userID] = settings
	}

	return s.saveLocked()
}

// Delete removes a user's override.
func (s *Service) Delete(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.settings[userID]; !exists {
		return nil
	}

	delete(s.settings, userID)

	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.settings = make(map[string]models.UserSettings)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read user settings: %w", err)
	}
	if len(data) == 0 {
		s.settings = make(map[string]models.UserSettings)
		return nil
	}

	var settings map[string]models.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("decode user settings: %w", err)
	}

	// Entries that decode to nothing (all fields null) are dropped.
	for userID, us := range settings {
		if us.IsEmpty() {
			delete(settings, userID)
		}
	}
	if settings == nil {
		settings = make(map[string]models.UserSettings)
	}

	s.settings = settings
	return nil
}

func (s *Service) saveLocked() error {
	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create user settings temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.settings); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode user settings: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync user settings: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close user settings temp file: %w", err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace user settings file: %w", err)
	}

	return nil
}
