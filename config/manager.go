package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs   afero.Fs
	path string
}

// NewManager returns a Manager backed by the OS filesystem.
func NewManager(configPath string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), configPath)
}

// NewManagerWithFs returns a Manager on an arbitrary filesystem.
func NewManagerWithFs(fsys afero.Fs, configPath string) *Manager {
	return &Manager{fs: fsys, path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads the settings file, creating it with defaults when missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	data, err := afero.ReadFile(m.fs, m.path)
	if errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}

	data, err = migrateLegacyUsenet(data)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	return Normalize(s), nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}

// migrateLegacyUsenet converts the single-object usenet section written by
// older servers into the list form.
func migrateLegacyUsenet(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	usenetRaw, ok := raw["usenet"].(map[string]any)
	if !ok {
		return data, nil
	}

	if host, _ := usenetRaw["host"].(string); strings.TrimSpace(host) != "" {
		if _, hasName := usenetRaw["name"]; !hasName {
			usenetRaw["name"] = "Primary"
		}
		if _, hasEnabled := usenetRaw["enabled"]; !hasEnabled {
			usenetRaw["enabled"] = true
		}
		raw["usenet"] = []any{usenetRaw}
	} else {
		raw["usenet"] = []any{}
	}
	return json.Marshal(raw)
}
