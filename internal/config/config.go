// Package config содержит настройки CLI и их загрузку через viper.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/art-injener/orbitprop/internal/observability"
	"github.com/art-injener/orbitprop/internal/report"
	"github.com/art-injener/orbitprop/internal/sgp4"
)

// EnvPrefix префикс переменных окружения: ORBITPROP_GRAVITY, ORBITPROP_LOG_LEVEL и т.д.
const EnvPrefix = "ORBITPROP"

// Значения по умолчанию.
const (
	DefaultGravity     = "wgs72"
	DefaultOpsMode     = "improved"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultServiceName = "orbitprop"
	DefaultExporter    = "stdout"
)

// LogConfig настройки журнала.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`
	// Format: text или json.
	Format string `yaml:"format" mapstructure:"format"`
}

// ReportConfig настройки таблиц сравнения.
type ReportConfig struct {
	Color      bool              `yaml:"color" mapstructure:"color"`
	Thresholds report.Thresholds `yaml:"thresholds" mapstructure:"thresholds"`
}

// Config настройки sgp4cmp.
type Config struct {
	// Gravity гравитационная модель: wgs72, wgs72old, wgs84.
	Gravity string `yaml:"gravity" mapstructure:"gravity"`

	// OpsMode режим расчёта: improved или afspc.
	OpsMode string `yaml:"opsmode" mapstructure:"opsmode"`

	// Oracle включает сверку с go-satellite.
	Oracle bool `yaml:"oracle" mapstructure:"oracle"`

	// MetricsFile путь для выгрузки метрик в формате textfile. Пустая строка отключает выгрузку.
	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`

	Log     LogConfig                   `yaml:"log" mapstructure:"log"`
	Report  ReportConfig                `yaml:"report" mapstructure:"report"`
	Tracing observability.TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		Gravity: DefaultGravity,
		OpsMode: DefaultOpsMode,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Report: ReportConfig{
			Color:      true,
			Thresholds: report.DefaultThresholds(),
		},
		Tracing: observability.TracingConfig{
			ServiceName: DefaultServiceName,
			Exporter:    DefaultExporter,
			SampleRatio: 1,
		},
	}
}

// Validate проверяет конфигурацию и подставляет значения по умолчанию для пустых полей.
func (c *Config) Validate() error {
	if c.Gravity == "" {
		c.Gravity = DefaultGravity
	}
	if c.OpsMode == "" {
		c.OpsMode = DefaultOpsMode
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = DefaultExporter
	}
	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}

	if _, err := sgp4.ParseGravityModel(c.Gravity); err != nil {
		return err
	}
	if _, err := sgp4.ParseOpsMode(c.OpsMode); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (available: text, json)", c.Log.Format)
	}

	return validateThresholds(&c.Report.Thresholds)
}

func validateThresholds(th *report.Thresholds) error {
	def := report.DefaultThresholds()

	limits := []struct {
		name string
		l    *report.Limit
		def  report.Limit
	}{
		{"position_axis", &th.PositionAxis, def.PositionAxis},
		{"position_total", &th.PositionTotal, def.PositionTotal},
		{"velocity_axis", &th.VelocityAxis, def.VelocityAxis},
		{"velocity_total", &th.VelocityTotal, def.VelocityTotal},
	}

	var invalid []string
	for _, lim := range limits {
		if lim.l.Warn <= 0 && lim.l.Fail <= 0 {
			*lim.l = lim.def

			continue
		}
		if lim.l.Warn <= 0 || lim.l.Fail < lim.l.Warn {
			invalid = append(invalid, lim.name)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid report thresholds: %s (need 0 < warn <= fail)", strings.Join(invalid, ", "))
	}

	return nil
}

// GravityModel возвращает разобранную гравитационную модель.
func (c *Config) GravityModel() sgp4.GravityModel {
	g, _ := sgp4.ParseGravityModel(c.Gravity)

	return g
}

// Ops возвращает разобранный режим расчёта.
func (c *Config) Ops() sgp4.OpsMode {
	m, _ := sgp4.ParseOpsMode(c.OpsMode)

	return m
}

// LogLevel возвращает уровень журнала.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return lvl, nil
}

// Load читает конфигурацию из файла path (если задан), переменных окружения
// ORBITPROP_* и флагов, привязанных к v.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("gravity", d.Gravity)
	v.SetDefault("opsmode", d.OpsMode)
	v.SetDefault("oracle", d.Oracle)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("report.color", d.Report.Color)

	th := d.Report.Thresholds
	for key, l := range map[string]report.Limit{
		"position_axis":  th.PositionAxis,
		"position_total": th.PositionTotal,
		"velocity_axis":  th.VelocityAxis,
		"velocity_total": th.VelocityTotal,
	} {
		v.SetDefault("report.thresholds."+key+".warn", l.Warn)
		v.SetDefault("report.thresholds."+key+".fail", l.Fail)
	}

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.sample_ratio", d.Tracing.SampleRatio)
}
