package main

import (
	"fmt"

	"github.com/forest-guardian/geodiff/internal/geo"
	"github.com/forest-guardian/geodiff/internal/properties"
	"github.com/spf13/cobra"
)

func newQuadrantsCmd() *cobra.Command {
	var (
		lat, lon  float64
		area      string
		scale     float64
		maxPixels int
	)
	cmd := &cobra.Command{
		Use:   "quadrants",
		Short: "Print the four quadrant footprints around a point as GeoJSON",
		Example: `  geodiff quadrants --lat -22.9 --lon -47.1 --scale 10 --max-pixels 2500
  geodiff quadrants --geojson plot.geojson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if area != "" {
				var err error
				if lat, lon, err = geo.CentroidFromGeoJSON(area); err != nil {
					return err
				}
			} else if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return fmt.Errorf("either --geojson or both --lat and --lon are required")
			}
			if scale <= 0 || maxPixels <= 0 {
				return fmt.Errorf("scale and max-pixels must be positive")
			}
			fc := geo.NewROI(lat, lon, scale, maxPixels).FeatureCollection()
			raw, err := fc.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the center point")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude of the center point")
	cmd.Flags().StringVar(&area, "geojson", "", "GeoJSON file whose centroid is used as the center point")
	cmd.Flags().Float64Var(&scale, "scale", properties.Scale(), "Meters per pixel")
	cmd.Flags().IntVar(&maxPixels, "max-pixels", properties.MaxPixels(), "Pixels per quadrant side")
	cmd.MarkFlagsMutuallyExclusive("geojson", "lat")
	cmd.MarkFlagsMutuallyExclusive("geojson", "lon")
	return cmd
}
