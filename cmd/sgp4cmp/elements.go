package main

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/art-injener/orbitprop/internal/sgp4"
)

func newElementsCmd(a *app) *cobra.Command {
	var line1, line2 string

	cmd := &cobra.Command{
		Use:   "elements [tle-file]",
		Short: "Print converted mean elements and orbit classification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTLE(args, line1, line2)
			if err != nil {
				return err
			}

			el, err := sgp4.Convert(t,
				sgp4.WithGravity(a.cfg.GravityModel()),
				sgp4.WithOpsMode(a.cfg.Ops()),
			)
			if err != nil {
				return err
			}

			return writeElements(cmd.OutOrStdout(), t.Name, el)
		},
	}

	cmd.Flags().StringVar(&line1, "line1", "", "TLE line 1")
	cmd.Flags().StringVar(&line2, "line2", "", "TLE line 2")

	return cmd
}

func writeElements(w io.Writer, name string, el *sgp4.Elements) error {
	const rad2deg = 180 / math.Pi

	if name == "" {
		name = "-"
	}

	rows := []struct {
		key string
		val string
	}{
		{"name", name},
		{"norad id", fmt.Sprintf("%d", el.SatNum)},
		{"epoch", el.Epoch.UTC().Format("2006-01-02T15:04:05.000000Z")},
		{"epoch jd", fmt.Sprintf("%.8f", el.EpochJD)},
		{"gravity", el.Gravity.String()},
		{"ops mode", el.OpsMode.String()},
		{"regime", el.Regime.String()},
		{"resonance", el.Resonance.String()},
		{"inclination", fmt.Sprintf("%.4f deg", el.Inclination*rad2deg)},
		{"raan", fmt.Sprintf("%.4f deg", el.RAAN*rad2deg)},
		{"eccentricity", fmt.Sprintf("%.7f", el.Eccentricity)},
		{"arg of perigee", fmt.Sprintf("%.4f deg", el.ArgPerigee*rad2deg)},
		{"mean anomaly", fmt.Sprintf("%.4f deg", el.MeanAnomaly*rad2deg)},
		{"mean motion", fmt.Sprintf("%.8f rad/min", el.MeanMotion)},
		{"bstar", fmt.Sprintf("%.5e", el.Bstar)},
		{"semi-major axis", fmt.Sprintf("%.3f km", el.SemiMajorAxis*el.EarthRadius())},
		{"period", fmt.Sprintf("%.3f min", el.Period)},
		{"perigee altitude", fmt.Sprintf("%.3f km", el.PerigeeAltitude())},
		{"apogee altitude", fmt.Sprintf("%.3f km", el.ApogeeAltitude())},
		{"guards", el.Guards.String()},
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%-17s %s\n", r.key+":", r.val); err != nil {
			return err
		}
	}

	return nil
}
