package library

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Set stores a JSON-encoded value under key, replacing any existing value.
func (s *Store) Set(key string, value any) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
		key, string(data),
	); err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}

	return nil
}

// Get decodes the value stored under key into out. A missing key returns
// (false, nil), never an error.
func (s *Store) Get(key string, out any) (bool, error) {
	if err := s.ensureInit(); err != nil {
		return false, err
	}

	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}

	return true, nil
}

// Delete removes a setting. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	if err := s.ensureInit(); err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
