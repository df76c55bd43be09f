package service

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DraftConfig tunes the local draft slot.
type DraftConfig struct {
	TTLHours *int `toml:"ttl_hours"` // Optional: if not set, the 3 hour default applies
}

// ViewConfig tunes the merged reservation view.
type ViewConfig struct {
	PendingFirst bool `toml:"pending_first"`
}

// CalendarConfig holds configuration for Google Calendar stay export
type CalendarConfig struct {
	Enabled            bool   `toml:"enabled"`
	CalendarID         string `toml:"calendar_id"`
	ServiceAccountPath string `toml:"service_account_path"`
}

// FeatureConfig holds user-facing feature configurations.
// These are non-sensitive settings that customize application behavior
// and integrations. Users can modify these without redeployment.
// Source: TOML configuration file
type FeatureConfig struct {
	Draft    DraftConfig    `toml:"draft"`
	View     ViewConfig     `toml:"view"`
	Calendar CalendarConfig `toml:"calendar"`
}

// LoadFeatureConfig loads feature configuration from a TOML file
func LoadFeatureConfig(path string) (*FeatureConfig, error) {
	var cfg FeatureConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load feature config: %w", err)
	}
	return &cfg, nil
}

// DraftTTL resolves the configured draft TTL; zero means use the default.
func (c *FeatureConfig) DraftTTL() time.Duration {
	if c.Draft.TTLHours == nil || *c.Draft.TTLHours <= 0 {
		return 0
	}
	return time.Duration(*c.Draft.TTLHours) * time.Hour
}

// LoadServiceAccountToken reads the service account JSON from the configured path
func (c *CalendarConfig) LoadServiceAccountToken() ([]byte, error) {
	if c.ServiceAccountPath == "" {
		return nil, fmt.Errorf("service_account_path is not configured")
	}
	data, err := os.ReadFile(c.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	return data, nil
}
