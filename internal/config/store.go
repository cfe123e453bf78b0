package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Store holds the in-memory settings snapshot and persists every change
// to a TOML file. Unknown keys in the file are ignored on load; missing
// keys fall back to defaults.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	current Settings
}

// NewStore creates a store bound to path and loads the persisted state.
// A missing or corrupt file never fails the caller; defaults are used and
// the problem is logged.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{path: path, logger: logger}
	s.current = s.load()
	return s
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Get returns the current in-memory snapshot. Safe for concurrent readers.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update merges the patch into the current settings, validates the result,
// and persists it atomically. On validation failure the stored settings
// are left unchanged.
func (s *Store) Update(patch Patch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := Normalize(patch.apply(s.current))
	if err := Validate(merged); err != nil {
		return s.current, err
	}

	if err := s.save(merged); err != nil {
		return s.current, fmt.Errorf("persist settings: %w", err)
	}

	s.current = merged
	return merged, nil
}

// Reload re-reads the persisted file, replacing the in-memory snapshot.
func (s *Store) Reload() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.load()
	return s.current
}

// load reads persisted settings, falling back to defaults on any problem.
// Defaults also backfill fields absent from the file.
func (s *Store) load() Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read settings file, using defaults", "path", s.path, "error", err)
		}
		return settings
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		s.logger.Warn("settings file is corrupt, using defaults", "path", s.path, "error", err)
		return DefaultSettings()
	}

	normalized := Normalize(settings)
	if err := Validate(normalized); err != nil {
		s.logger.Warn("settings file contains invalid values, using defaults", "path", s.path, "error", err)
		return DefaultSettings()
	}
	return normalized
}

// save writes settings to a temp file and renames it into place so a
// crash mid-write cannot corrupt the store.
func (s *Store) save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
