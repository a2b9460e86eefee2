package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/art-injener/orbitprop/internal/config"
	"github.com/art-injener/orbitprop/internal/observability"
	"github.com/art-injener/orbitprop/internal/sgp4"
	"github.com/art-injener/orbitprop/internal/tle"
)

// app общее состояние команд.
type app struct {
	v          *viper.Viper
	configPath string

	cfg       *config.Config
	logger    *slog.Logger
	collector *observability.PropagationCollector
	shutdown  func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "sgp4cmp",
		Short:         "SGP4/SDP4 propagator and reference comparison tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to YAML config")
	flags.String("gravity", config.DefaultGravity, "gravity model: wgs72, wgs72old, wgs84")
	flags.String("opsmode", config.DefaultOpsMode, "ops mode: improved (i) or afspc (a)")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.String("log-format", config.DefaultLogFormat, "log format: text or json")
	flags.Bool("color", true, "colorize comparison tables")
	flags.String("metrics-file", "", "write Prometheus metrics textfile on exit")
	flags.Bool("oracle", false, "cross-check against go-satellite")
	flags.Bool("trace", false, "enable OpenTelemetry tracing")

	// Флаги объявлены выше, ошибка привязки означает опечатку в таблице.
	if err := bindFlags(a.v, flags, flagKeys); err != nil {
		panic(err)
	}

	root.AddCommand(
		newCompareCmd(a),
		newPropagateCmd(a),
		newElementsCmd(a),
	)

	return root
}

// flagKeys сопоставляет ключи конфигурации флагам командной строки.
var flagKeys = map[string]string{
	"gravity":         "gravity",
	"opsmode":         "opsmode",
	"log.level":       "log-level",
	"log.format":      "log-format",
	"report.color":    "color",
	"metrics_file":    "metrics-file",
	"oracle":          "oracle",
	"tracing.enabled": "trace",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := flags.Lookup(name)
		if flag == nil {
			return errors.Errorf("bind %s: flag --%s is not defined", key, name)
		}

		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "bind %s", key)
		}
	}

	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	lvl, _ := cfg.LogLevel()
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log.Format, lvl)
	slog.SetDefault(a.logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a.shutdown, err = observability.InitTracing(ctx, cfg.Tracing, a.logger)
	if err != nil {
		return errors.Wrap(err, "init tracing")
	}

	a.collector, err = observability.NewPropagationCollector(prometheus.NewRegistry())
	if err != nil {
		return errors.Wrap(err, "init metrics")
	}

	a.logger.Debug("configuration loaded",
		slog.String("gravity", cfg.Gravity),
		slog.String("opsmode", cfg.OpsMode),
		slog.Bool("oracle", cfg.Oracle),
	)

	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	observability.ShutdownWithTimeout(ctx, a.shutdown, a.logger)

	if a.cfg == nil || a.cfg.MetricsFile == "" {
		return nil
	}

	if err := a.collector.WriteTextfile(a.cfg.MetricsFile); err != nil {
		return err
	}

	a.logger.Info("metrics written", slog.String("path", a.cfg.MetricsFile))

	return nil
}

func newLogger(w io.Writer, format string, lvl slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// propagatorOptions возвращает опции пропагатора из конфигурации.
func (a *app) propagatorOptions() []sgp4.Option {
	return []sgp4.Option{
		sgp4.WithGravity(a.cfg.GravityModel()),
		sgp4.WithOpsMode(a.cfg.Ops()),
		sgp4.WithLogger(a.logger),
		sgp4.WithObserver(a.collector),
	}
}

// readTLEFile читает файл из двух или трёх строк TLE.
func readTLEFile(path string) (*tle.TLE, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read TLE file")
	}

	t, err := tle.ParseLines(strings.Split(string(data), "\n"))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	return t, nil
}
