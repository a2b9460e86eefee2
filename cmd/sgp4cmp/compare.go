package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/art-injener/orbitprop/internal/crosscheck"
	"github.com/art-injener/orbitprop/internal/ephem"
	"github.com/art-injener/orbitprop/internal/observability"
	"github.com/art-injener/orbitprop/internal/report"
	"github.com/art-injener/orbitprop/internal/sgp4"
)

// ErrThresholdExceeded возвращается compare --strict при итоге fail.
var ErrThresholdExceeded = errors.New("reference deviation exceeds fail threshold")

func newCompareCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "compare <reference-file>",
		Short: "Compare propagated states with a reference ephemeris",
		Long: `Reads a reference file (TLE, then "TSINCE X Y Z" rows and an optional
"XDOT YDOT ZDOT" section), propagates the TLE to every reference time
and prints per-axis deviations with a summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with error when the summary result is fail")

	return cmd
}

func (a *app) runCompare(cmd *cobra.Command, path string, strict bool) error {
	ctx, span := observability.Tracer().Start(cmd.Context(), "compare")
	defer span.End()

	ref, err := ephem.ReadFile(path)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	span.SetAttributes(
		attribute.Int("norad_id", ref.TLE.NoradID),
		attribute.Int("points", ref.Len()),
	)

	prop, err := sgp4.NewPropagator(ref.TLE, a.propagatorOptions()...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	var oracle *crosscheck.Oracle
	if a.cfg.Oracle {
		oracle, err = crosscheck.NewOracle(ref.TLE, a.cfg.GravityModel())
		if err != nil {
			a.logger.Warn("oracle disabled", slog.Any("error", err))
		}
	}

	el := prop.Elements()
	if ref.Model != "" && ref.Model != modelName(el.Regime) {
		a.logger.Warn("reference model differs from selected regime",
			slog.String("reference", ref.Model),
			slog.String("model", modelName(el.Regime)),
		)
	}

	_, propSpan := observability.Tracer().Start(ctx, "propagate")
	pos, vel, err := a.buildRows(ref, prop, oracle)
	propSpan.SetAttributes(attribute.Int("rows", len(pos)))
	propSpan.End()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	th := a.cfg.Report.Thresholds
	w := report.NewWriter(cmd.OutOrStdout(), th, a.cfg.Report.Color)

	if err := w.Positions(pos); err != nil {
		return err
	}
	if len(vel) > 0 {
		if err := w.Velocities(vel); err != nil {
			return err
		}
	}

	summary := report.Summarize(pos, vel, th)
	if err := w.Summary(summary); err != nil {
		return err
	}

	a.logger.Info("comparison finished",
		slog.Int("norad_id", ref.TLE.NoradID),
		slog.String("regime", el.Regime.String()),
		slog.Int("points", summary.Count),
		slog.Float64("max_position_km", summary.MaxPosition),
		slog.String("result", summary.Worst.String()),
	)

	span.SetAttributes(attribute.String("result", summary.Worst.String()))

	if strict && summary.Worst == report.LevelFail {
		return ErrThresholdExceeded
	}

	return nil
}

// buildRows пропагирует TLE во все эталонные моменты.
func (a *app) buildRows(ref *ephem.Reference, prop *sgp4.Propagator, oracle *crosscheck.Oracle) (pos, vel []report.Row, err error) {
	pos = make([]report.Row, 0, ref.Len())
	if ref.HasVelocities() {
		vel = make([]report.Row, 0, ref.Len())
	}

	for i, ts := range ref.Tsince {
		sv, err := prop.Propagate(ts)
		if err != nil {
			return pos, vel, errors.Wrapf(err, "reference row %d", i+1)
		}

		if w := sv.Warning(); w != nil {
			a.logger.Warn("propagation warning", slog.Float64("tsince", ts), slog.Any("warning", w))
		}

		pr := report.Row{Tsince: ts, Reference: ref.Positions[i], Simulated: sv.Position}
		vr := report.Row{Tsince: ts, Simulated: sv.Velocity}

		if oracle != nil {
			if op, ov, oerr := oracle.Propagate(ts); oerr == nil {
				pr.Oracle = vecPtr(op)
				vr.Oracle = vecPtr(ov)
			} else {
				a.logger.Debug("oracle failed", slog.Float64("tsince", ts), slog.Any("error", oerr))
			}
		}

		pos = append(pos, pr)

		if ref.HasVelocities() {
			vr.Reference = ref.Velocities[i]
			vel = append(vel, vr)
		}
	}

	return pos, vel, nil
}

// modelName возвращает название модели в формате заголовка эталона.
func modelName(r sgp4.Regime) string {
	if r == sgp4.DeepSpace {
		return "SDP4"
	}

	return "SGP4"
}

func vecPtr(v r3.Vec) *r3.Vec {
	return &v
}
