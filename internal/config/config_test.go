package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/art-injener/orbitprop/internal/report"
	"github.com/art-injener/orbitprop/internal/sgp4"
)

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, sgp4.GravityWGS72, cfg.GravityModel())
	assert.Equal(t, sgp4.OpsImproved, cfg.Ops())
	assert.Equal(t, report.DefaultThresholds(), cfg.Report.Thresholds)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name:   "empty fields filled",
			mutate: func(c *Config) { *c = Config{} },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultGravity, c.Gravity)
				assert.Equal(t, DefaultLogFormat, c.Log.Format)
				assert.Equal(t, report.DefaultThresholds(), c.Report.Thresholds)
				assert.InDelta(t, 1.0, c.Tracing.SampleRatio, 0)
			},
		},
		{
			name:    "unknown gravity",
			mutate:  func(c *Config) { c.Gravity = "egm2008" },
			wantErr: true,
		},
		{
			name:    "unknown ops mode",
			mutate:  func(c *Config) { c.OpsMode = "legacy" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "warn above fail",
			mutate:  func(c *Config) { c.Report.Thresholds.PositionAxis = report.Limit{Warn: 500, Fail: 100} },
			wantErr: true,
		},
		{
			name:   "afspc wgs72old",
			mutate: func(c *Config) { c.Gravity, c.OpsMode = "wgs72old", "a" },
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, sgp4.GravityWGS72Old, c.GravityModel())
				assert.Equal(t, sgp4.OpsAFSPC, c.Ops())
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orbitprop.yaml")
	data := []byte(`
gravity: wgs84
oracle: true
log:
  level: debug
  format: json
report:
  color: false
  thresholds:
    position_axis:
      warn: 1
      fail: 2
tracing:
  enabled: true
  exporter: otlp
  endpoint: collector:4317
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, sgp4.GravityWGS84, cfg.GravityModel())
	assert.Equal(t, sgp4.OpsImproved, cfg.Ops())
	assert.True(t, cfg.Oracle)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Report.Color)
	assert.Equal(t, report.Limit{Warn: 1, Fail: 2}, cfg.Report.Thresholds.PositionAxis)
	assert.Equal(t, report.DefaultThresholds().VelocityTotal, cfg.Report.Thresholds.VelocityTotal)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "collector:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, DefaultServiceName, cfg.Tracing.ServiceName)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ORBITPROP_GRAVITY", "wgs72old")
	t.Setenv("ORBITPROP_LOG_LEVEL", "warn")

	cfg, err := Load(nil, "")
	require.NoError(t, err)

	assert.Equal(t, sgp4.GravityWGS72Old, cfg.GravityModel())
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gravity: jupiter\n"), 0o600))

	_, err = Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}
