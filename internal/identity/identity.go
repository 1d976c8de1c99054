// Package identity manages the agent's identity record: a small YAML
// file loaded at startup and changed only by explicit administrative
// action. The consolidation pipeline never writes here.
package identity

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lamina-ai/recall-go/internal/models"
)

// Manager loads and serves the identity record. Reads are concurrent;
// Reload swaps the record atomically.
type Manager struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	record models.IdentityRecord
}

// Default returns the identity used when no file exists yet.
func Default() models.IdentityRecord {
	return models.IdentityRecord{
		Name:        "Recall",
		Nature:      "conversational memory agent",
		Owner:       "unset",
		Personality: "attentive, precise, a little dry",
		Traits: []string{
			"remembers what mattered, not everything",
			"answers from evidence, not vibes",
		},
		CreatedAt: time.Now().UTC(),
	}
}

// NewManager creates a manager for the identity file at path. The file
// is not read until Load.
func NewManager(path string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{path: path, logger: logger}
}

// Load reads the identity file. A missing file is not an error: the
// default identity is written to disk and served.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.logger.Info("identity file missing, writing default", "path", m.path)
		record := Default()
		if err := m.write(record); err != nil {
			return err
		}
		m.mu.Lock()
		m.record = record
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read identity file: %w", err)
	}

	var record models.IdentityRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("parse identity file %s: %w", m.path, err)
	}
	if record.Name == "" {
		record.Name = Default().Name
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	m.record = record
	m.mu.Unlock()

	m.logger.Info("identity loaded", "name", record.Name, "path", m.path)
	return nil
}

// Reload re-reads the file from disk. On failure the previous record
// stays in effect.
func (m *Manager) Reload() (models.IdentityRecord, error) {
	if err := m.Load(); err != nil {
		return m.Current(), err
	}
	return m.Current(), nil
}

// Current returns the active identity record.
func (m *Manager) Current() models.IdentityRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.record
}

// Save persists a new identity record and makes it active.
func (m *Manager) Save(record models.IdentityRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := m.write(record); err != nil {
		return err
	}

	m.mu.Lock()
	m.record = record
	m.mu.Unlock()
	return nil
}

func (m *Manager) write(record models.IdentityRecord) error {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create identity dir: %w", err)
		}
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}
	return nil
}
