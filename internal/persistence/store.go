// Package persistence provides SQLite-backed storage for named parameter
// presets. Presets are run inputs only; simulation output is never stored.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/power-sandbox/internal/dynamics"
)

// ErrPresetNotFound is returned when no preset exists under the given name.
var ErrPresetNotFound = errors.New("preset not found")

// Store wraps a SQLite connection for preset storage.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS presets (
		name TEXT PRIMARY KEY,
		params_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SavePreset stores a parameter set under a name, replacing any existing
// preset with that name. The parameters are validated first.
func (s *Store) SavePreset(name string, p dynamics.Params) error {
	if name == "" {
		return fmt.Errorf("preset name must not be empty")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	paramsJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal preset %q: %w", name, err)
	}

	_, err = s.conn.Exec(
		"INSERT OR REPLACE INTO presets (name, params_json, updated_at) VALUES (?, ?, ?)",
		name, string(paramsJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save preset %q: %w", name, err)
	}
	return nil
}

// GetPreset loads the parameter set stored under a name.
func (s *Store) GetPreset(name string) (dynamics.Params, error) {
	var paramsJSON string
	err := s.conn.Get(&paramsJSON, "SELECT params_json FROM presets WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return dynamics.Params{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if err != nil {
		return dynamics.Params{}, fmt.Errorf("get preset %q: %w", name, err)
	}

	var p dynamics.Params
	if err := json.Unmarshal([]byte(paramsJSON), &p); err != nil {
		return dynamics.Params{}, fmt.Errorf("unmarshal preset %q: %w", name, err)
	}
	return p, nil
}

// ListPresets returns all preset names in alphabetical order.
func (s *Store) ListPresets() ([]string, error) {
	var names []string
	if err := s.conn.Select(&names, "SELECT name FROM presets ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return names, nil
}

// DeletePreset removes a preset. Deleting a missing preset is not an error.
func (s *Store) DeletePreset(name string) error {
	if _, err := s.conn.Exec("DELETE FROM presets WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	return nil
}
