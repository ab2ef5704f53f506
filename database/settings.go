package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Nexus-Agni/just-server-vpn-proxy/logger"
	"github.com/Nexus-Agni/just-server-vpn-proxy/models"
)

// GetSetting retrieves a specific setting value from the app_settings table.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM app_settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // Return empty string if not found, not an error
		}
		return "", fmt.Errorf("failed to get setting '%s': %w", key, err)
	}
	return value, nil
}

// SetSetting saves or updates a specific setting value in the app_settings table.
func (s *Store) SetSetting(key, value string) error {
	stmt, err := s.db.Prepare("INSERT OR REPLACE INTO app_settings (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare set setting statement for key '%s': %w", key, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(key, value)
	if err != nil {
		return fmt.Errorf("failed to execute set setting for key '%s': %w", key, err)
	}
	return nil
}

// ProxyEnabled reads the persisted proxy toggle flag. A missing row means
// the flag was never written and defaults to false (first install).
func (s *Store) ProxyEnabled() (bool, error) {
	raw, err := s.GetSetting(models.ProxyEnabledKey)
	if err != nil {
		return false, fmt.Errorf("failed to get proxy enabled setting: %w", err)
	}
	if raw == "" {
		return false, nil
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Error("ProxyEnabled: unparseable stored value %q, treating as disabled: %v", raw, err)
		return false, nil
	}
	return enabled, nil
}

// SetProxyEnabled persists the proxy toggle flag.
func (s *Store) SetProxyEnabled(enabled bool) error {
	if err := s.SetSetting(models.ProxyEnabledKey, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("failed to save proxy enabled setting: %w", err)
	}
	return nil
}
