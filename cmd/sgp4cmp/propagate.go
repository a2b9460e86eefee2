package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/art-injener/orbitprop/internal/observability"
	"github.com/art-injener/orbitprop/internal/sgp4"
	"github.com/art-injener/orbitprop/internal/tle"
)

type propagateFlags struct {
	line1, line2     string
	start, end, step float64
	at               string
}

func newPropagateCmd(a *app) *cobra.Command {
	var f propagateFlags

	cmd := &cobra.Command{
		Use:   "propagate [tle-file]",
		Short: "Print TEME state vectors for a TLE",
		Long: `Propagates a TLE given as a file (2 or 3 lines) or with --line1/--line2.
Without --at prints states from --start to --end minutes since epoch with --step.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTLE(args, f.line1, f.line2)
			if err != nil {
				return err
			}

			return a.runPropagate(cmd, t, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.line1, "line1", "", "TLE line 1")
	fl.StringVar(&f.line2, "line2", "", "TLE line 2")
	fl.Float64Var(&f.start, "start", 0, "first tsince, minutes")
	fl.Float64Var(&f.end, "end", 1440, "last tsince, minutes")
	fl.Float64Var(&f.step, "step", 360, "step, minutes")
	fl.StringVar(&f.at, "at", "", "single UTC time in RFC3339 instead of a range")

	return cmd
}

func loadTLE(args []string, line1, line2 string) (*tle.TLE, error) {
	switch {
	case len(args) == 1:
		return readTLEFile(args[0])
	case line1 != "" && line2 != "":
		return tle.Parse(line1, line2)
	default:
		return nil, errors.New("need a TLE file or both --line1 and --line2")
	}
}

func (a *app) runPropagate(cmd *cobra.Command, t *tle.TLE, f propagateFlags) error {
	_, span := observability.Tracer().Start(cmd.Context(), "propagate")
	defer span.End()

	span.SetAttributes(attribute.Int("norad_id", t.NoradID))

	prop, err := sgp4.NewPropagator(t, a.propagatorOptions()...)
	if err != nil {
		return err
	}

	var states []sgp4.StateVector

	if f.at != "" {
		at, perr := time.Parse(time.RFC3339, f.at)
		if perr != nil {
			return errors.Wrap(perr, "parse --at")
		}

		sv, perr := prop.PropagateAt(at)
		if perr != nil {
			return perr
		}

		states = append(states, sv)
	} else {
		// при ошибке печатаем то, что успели посчитать
		states, err = prop.PropagateRange(f.start, f.end, f.step)
	}

	span.SetAttributes(attribute.Int("states", len(states)))

	if werr := writeStates(cmd.OutOrStdout(), prop.Elements(), states); werr != nil {
		return werr
	}

	if err != nil {
		a.logger.Error("propagation stopped", slog.Int("computed", len(states)), slog.Any("error", err))

		return err
	}

	return nil
}

func writeStates(w io.Writer, el *sgp4.Elements, states []sgp4.StateVector) error {
	if _, err := fmt.Fprintf(w, "%-12s %15s %15s %15s %13s %13s %13s  %s\n",
		"TSINCE", "X", "Y", "Z", "XDOT", "YDOT", "ZDOT", "UTC"); err != nil {
		return err
	}

	for _, sv := range states {
		utc := el.Epoch.Add(time.Duration(sv.Tsince * float64(time.Minute))).UTC()

		line := fmt.Sprintf("%-12.4f %15.6f %15.6f %15.6f %13.9f %13.9f %13.9f  %s",
			sv.Tsince,
			sv.Position.X, sv.Position.Y, sv.Position.Z,
			sv.Velocity.X, sv.Velocity.Y, sv.Velocity.Z,
			utc.Format("2006-01-02T15:04:05.000Z"),
		)
		if sv.Warnings != 0 {
			line += "  ! " + sv.Warnings.String()
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
