package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings holds user-configurable daemon behavior.
type Settings struct {
	ExportDir         string `yaml:"exportDir" json:"exportDir"`                                   // empty = <dataDir>/exports
	LoadSlotOnConnect *int   `yaml:"loadSlotOnConnect,omitempty" json:"loadSlotOnConnect,omitempty"` // nil = keep the current program
	Advertise         bool   `yaml:"advertise" json:"advertise"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		ExportDir: "",
		Advertise: true,
	}
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.LoadSlotOnConnect != nil && (*s.LoadSlotOnConnect < 0 || *s.LoadSlotOnConnect > 255) {
		return fmt.Errorf("loadSlotOnConnect out of range: %d", *s.LoadSlotOnConnect)
	}
	return nil
}

// Store provides thread-safe settings persistence backed by a YAML file.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	path     string
}

// NewStore creates a Store that persists settings to dataDir/settings.yaml.
// If the file does not exist or is invalid, default settings are used.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	s := &Store{
		path:     filepath.Join(dataDir, "settings.yaml"),
		settings: DefaultSettings(),
	}
	s.load()
	return s, nil
}

// NewMemoryStore creates a Store that keeps settings in memory only (no file persistence).
func NewMemoryStore() *Store {
	return &Store{settings: DefaultSettings()}
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the settings and persists to disk.
func (s *Store) Update(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.save()
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return // file missing is OK, use defaults
	}
	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		slog.Warn("invalid settings file, using defaults", "path", s.path, "err", err)
		return
	}
	if err := settings.Validate(); err != nil {
		slog.Warn("invalid settings file, using defaults", "path", s.path, "err", err)
		return
	}
	s.settings = settings
}

func (s *Store) save() error {
	if s.path == "" {
		return nil // memory-only mode
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
