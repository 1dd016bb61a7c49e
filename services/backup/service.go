package backup

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"novaremote/config"
	"novaremote/models"
)

// Type indicates how a snapshot was created.
type Type string

const (
	TypeManual     Type = "manual"
	TypeStartup    Type = "startup"
	TypePreRestore Type = "pre_restore"
)

const (
	filePrefix   = "settings_backup_"
	fileSuffix   = ".zip"
	manifestName = "manifest.json"
)

var (
	ErrInvalidName = errors.New("invalid backup filename")
	ErrNotFound    = errors.New("backup not found")
)

// Info describes one snapshot archive.
type Info struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Type      Type      `json:"type"`
	Files     int       `json:"files"`
}

// Manifest is stored inside every archive.
type Manifest struct {
	Version   string            `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	Type      Type              `json:"type"`
	Files     map[string]string `json:"files"` // filename -> sha256
}

// Files captured by a snapshot, relative to the data directory.
var snapshotFiles = []string{
	"settings.json",
	"user_settings.json",
}

// Service snapshots and restores the settings documents of a data directory.
type Service struct {
	mu        sync.RWMutex
	fs        afero.Fs
	dataDir   string
	backupDir string
	now       func() time.Time
}

func NewService(dataDir string) (*Service, error) {
	return NewServiceWithFs(afero.NewOsFs(), dataDir)
}

func NewServiceWithFs(fsys afero.Fs, dataDir string) (*Service, error) {
	backupDir := filepath.Join(dataDir, "backups")
	if err := fsys.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &Service{fs: fsys, dataDir: dataDir, backupDir: backupDir, now: time.Now}, nil
}

func (s *Service) Dir() string {
	return s.backupDir
}

// Create archives the current settings documents. Missing files are skipped.
func (s *Service) Create(kind Type) (*Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(kind)
}

func (s *Service) createLocked(kind Type) (*Info, error) {
	created := s.now().UTC()
	filename := fmt.Sprintf("%s%s_%s%s", filePrefix, created.Format("20060102-150405"), uuid.NewString()[:8], fileSuffix)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	manifest := Manifest{Version: "1", CreatedAt: created, Type: kind, Files: make(map[string]string)}

	for _, name := range snapshotFiles {
		data, err := afero.ReadFile(s.fs, filepath.Join(s.dataDir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		manifest.Files[name] = checksum(data)
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	w, err := zw.Create(manifestName)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(manifestJSON); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	path := filepath.Join(s.backupDir, filename)
	if err := writeAtomic(s.fs, path, buf.Bytes()); err != nil {
		return nil, err
	}

	info := &Info{Filename: filename, Size: int64(buf.Len()), CreatedAt: created, Type: kind, Files: len(manifest.Files)}
	log.Printf("[backup] created %s (%d bytes, %d files)", filename, info.Size, info.Files)
	return info, nil
}

// List returns every snapshot, newest first.
func (s *Service) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Service) listLocked() ([]Info, error) {
	entries, err := afero.ReadDir(s.fs, s.backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	out := []Info{}
	for _, entry := range entries {
		if entry.IsDir() || validName(entry.Name()) != nil {
			continue
		}
		info := Info{Filename: entry.Name(), Size: entry.Size(), CreatedAt: entry.ModTime(), Type: TypeManual}
		if _, manifest, err := s.open(entry.Name()); err == nil {
			info.CreatedAt = manifest.CreatedAt
			info.Type = manifest.Type
			info.Files = len(manifest.Files)
		} else {
			log.Printf("[backup] unreadable manifest in %s: %v", entry.Name(), err)
		}
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Restore replaces the settings documents with the contents of filename.
// Every file is checksummed and the global document validated before
// anything is written, and the current state is snapshotted first.
func (s *Service) Restore(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, manifest, err := s.open(filename)
	if err != nil {
		return err
	}

	for name, want := range manifest.Files {
		data, ok := files[name]
		if !ok {
			return fmt.Errorf("%s listed in manifest but missing from archive", name)
		}
		if checksum(data) != want {
			return fmt.Errorf("checksum mismatch for %s", name)
		}
	}
	if err := verify(files); err != nil {
		return err
	}

	if _, err := s.createLocked(TypePreRestore); err != nil {
		return fmt.Errorf("snapshot before restore: %w", err)
	}

	for name := range manifest.Files {
		if err := writeAtomic(s.fs, filepath.Join(s.dataDir, name), files[name]); err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
	}
	log.Printf("[backup] restored %d files from %s (created %s)", len(manifest.Files), filename, manifest.CreatedAt.Format(time.RFC3339))
	return nil
}

// verify refuses archives whose documents the backend would not load.
func verify(files map[string][]byte) error {
	if data, ok := files["settings.json"]; ok {
		var settings config.Settings
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("settings.json in backup: %w", err)
		}
		settings = config.Normalize(settings)
		if err := settings.Validate(); err != nil {
			return fmt.Errorf("settings.json in backup: %w", err)
		}
	}
	if data, ok := files["user_settings.json"]; ok {
		var users map[string]models.UserSettings
		if err := json.Unmarshal(data, &users); err != nil {
			return fmt.Errorf("user_settings.json in backup: %w", err)
		}
	}
	return nil
}

func (s *Service) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(filename)
}

func (s *Service) deleteLocked(filename string) error {
	if err := validName(filename); err != nil {
		return err
	}
	path := filepath.Join(s.backupDir, filename)
	if _, err := s.fs.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	log.Printf("[backup] deleted %s", filename)
	return nil
}

// Prune keeps the newest keep snapshots and removes the rest. keep <= 0
// disables pruning.
func (s *Service) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backups, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	deleted := 0
	for i := keep; i < len(backups); i++ {
		if err := s.deleteLocked(backups[i].Filename); err != nil {
			log.Printf("[backup] failed to prune %s: %v", backups[i].Filename, err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Printf("[backup] pruned %d old backups", deleted)
	}
	return deleted, nil
}

// open reads an archive fully and returns its files and manifest.
func (s *Service) open(filename string) (map[string][]byte, *Manifest, error) {
	if err := validName(filename); err != nil {
		return nil, nil, err
	}
	data, err := afero.ReadFile(s.fs, filepath.Join(s.backupDir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}

	files := make(map[string][]byte, len(zr.File))
	var manifest *Manifest
	for _, f := range zr.File {
		content, err := readZipFile(f)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if f.Name == manifestName {
			manifest = &Manifest{}
			if err := json.Unmarshal(content, manifest); err != nil {
				return nil, nil, fmt.Errorf("decode manifest: %w", err)
			}
			continue
		}
		files[f.Name] = content
	}
	if manifest == nil {
		return nil, nil, errors.New("manifest not found in backup")
	}
	return files, manifest, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func validName(filename string) error {
	if strings.ContainsAny(filename, `/\`) || strings.HasPrefix(filename, ".") {
		return ErrInvalidName
	}
	if !strings.HasPrefix(filename, filePrefix) || !strings.HasSuffix(filename, fileSuffix) {
		return ErrInvalidName
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeAtomic(fsys afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		fsys.Remove(tmp)
		return err
	}
	return nil
}
