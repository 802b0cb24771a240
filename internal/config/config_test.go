package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("MATCH_THRESHOLD", "")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, "https://nominatim.openstreetmap.org", c.Geocoder.BaseURL)
	assert.Equal(t, 24*time.Hour, c.Geocoder.CacheTTL)
	assert.InDelta(t, 0.75, c.GenAI.MatchThreshold, 1e-9)
	assert.Equal(t, "admin", c.Auth.AdminRoleName)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(`
port: "9090"
geocoder:
  user_agent: "yaml-agent"
  cache_ttl: 2h
kafka:
  brokers: ["k1:9092"]
`), 0o600)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("GEOCODER_USER_AGENT", "env-agent")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,")
	t.Setenv("MATCH_THRESHOLD", "0.8")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "env-agent", c.Geocoder.UserAgent)
	assert.Equal(t, 2*time.Hour, c.Geocoder.CacheTTL)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.InDelta(t, 0.8, c.GenAI.MatchThreshold, 1e-9)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "abc")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("PORT", "8080")
	t.Setenv("MATCH_THRESHOLD", "1.5")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}
