package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, 50, cfg.Server.RateLimitBurst)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, "reports", cfg.Data.ReportsDir)

	assert.Equal(t, 0.05, cfg.Heuristics.DelayCostRate)
	assert.Equal(t, 50.0, cfg.Heuristics.DelayStorageFee)
	assert.Equal(t, 100.0, cfg.Heuristics.DelayFallbackPerDay)
	assert.Equal(t, 0.15, cfg.Heuristics.DamageRevenueFraction)
	assert.Equal(t, 0.45, cfg.Heuristics.DefaultCO2PerKM)
	assert.Equal(t, 20.0, cfg.Heuristics.OptimizedCO2ReductionPct)
	assert.Equal(t, 0.3, cfg.Heuristics.EVAdoptionRate)
	assert.Equal(t, 50000.0, cfg.Heuristics.EVUnitInvestment)
}

func TestLoadFromYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freightcli.yml")
	content := `
server:
  port: 9090
data:
  dir: /srv/freight/data
heuristics:
  delay_cost_rate: 0.1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/freight/data", cfg.Data.Dir)
	assert.Equal(t, 0.1, cfg.Heuristics.DelayCostRate)
	// Untouched values keep their defaults.
	assert.Equal(t, "reports", cfg.Data.ReportsDir)
	assert.Equal(t, 50.0, cfg.Heuristics.DelayStorageFee)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FREIGHT_SERVER_PORT", "7070")
	t.Setenv("FREIGHT_DATA_DIR", "/var/lib/freight")
	t.Setenv("FREIGHT_LOGGING_LEVEL", "debug")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/var/lib/freight", cfg.Data.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestValidateRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 0\n"), 0o644))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	t.Setenv("FREIGHT_LOGGING_LEVEL", "loud")

	_, err := LoadFrom("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateRejectsBadHeuristics(t *testing.T) {
	t.Setenv("FREIGHT_HEURISTICS_DAMAGE_REVENUE_FRACTION", "1.5")

	_, err := LoadFrom("")
	assert.Error(t, err)
}
