package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFeatureConfig_ValidTOML(t *testing.T) {
	path := writeConfigFile(t, `
[draft]
ttl_hours = 6

[view]
pending_first = true

[calendar]
enabled = true
calendar_id = "guest@group.calendar.google.com"
service_account_path = "/tmp/sa.json"
`)

	cfg, err := LoadFeatureConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Draft.TTLHours)
	assert.Equal(t, 6, *cfg.Draft.TTLHours)
	assert.True(t, cfg.View.PendingFirst)
	assert.True(t, cfg.Calendar.Enabled)
	assert.Equal(t, "guest@group.calendar.google.com", cfg.Calendar.CalendarID)
}

func TestLoadFeatureConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, ``)

	cfg, err := LoadFeatureConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Draft.TTLHours)
	assert.False(t, cfg.View.PendingFirst)
	assert.False(t, cfg.Calendar.Enabled)
}

func TestLoadFeatureConfig_MissingFile(t *testing.T) {
	_, err := LoadFeatureConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadFeatureConfig_InvalidTOML(t *testing.T) {
	path := writeConfigFile(t, `[draft`)

	_, err := LoadFeatureConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load feature config")
}

func TestDraftTTL(t *testing.T) {
	six := 6
	zero := 0

	tests := []struct {
		name string
		cfg  FeatureConfig
		want time.Duration
	}{
		{"unset means default", FeatureConfig{}, 0},
		{"explicit hours", FeatureConfig{Draft: DraftConfig{TTLHours: &six}}, 6 * time.Hour},
		{"zero means default", FeatureConfig{Draft: DraftConfig{TTLHours: &zero}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DraftTTL())
		})
	}
}

func TestLoadServiceAccountToken(t *testing.T) {
	saPath := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(saPath, []byte(`{"type": "service_account"}`), 0o600))

	cfg := CalendarConfig{ServiceAccountPath: saPath}
	data, err := cfg.LoadServiceAccountToken()
	require.NoError(t, err)
	assert.Contains(t, string(data), "service_account")
}

func TestLoadServiceAccountToken_Unconfigured(t *testing.T) {
	cfg := CalendarConfig{}
	_, err := cfg.LoadServiceAccountToken()
	assert.Error(t, err)
}
