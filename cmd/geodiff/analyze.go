package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/forest-guardian/geodiff/internal/delivery"
	"github.com/forest-guardian/geodiff/internal/geo"
	"github.com/forest-guardian/geodiff/internal/notification"
	"github.com/forest-guardian/geodiff/internal/properties"
	"github.com/forest-guardian/geodiff/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// analysisRequest is the YAML (or JSON) document naming each quadrant archive per date.
type analysisRequest struct {
	FirstDateImages  map[string]string `yaml:"first_date_images"`
	SecondDateImages map[string]string `yaml:"second_date_images"`
}

// loadRequest parses path; relative archive paths are taken from the request's directory.
func loadRequest(path string) (geo.QuadrantPaths, geo.QuadrantPaths, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var req analysisRequest
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return nil, nil, fmt.Errorf("failed to parse request %s: %w", path, err)
	}

	base := filepath.Dir(path)
	parse := func(name string, in map[string]string) (geo.QuadrantPaths, error) {
		paths, err := geo.ParseQuadrantPaths(in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for q, p := range paths {
			if !filepath.IsAbs(p) {
				paths[q] = filepath.Join(base, p)
			}
		}
		return paths, nil
	}
	first, err := parse("first_date_images", req.FirstDateImages)
	if err != nil {
		return nil, nil, err
	}
	second, err := parse("second_date_images", req.SecondDateImages)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		requestPath string
		outputDir   string
		tempRoot    string
		workers     int
		noProgress  bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare two dates of quadrant archives",
		Example: `  geodiff analyze --request request.yaml
  geodiff analyze --request request.json --output out/ --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			notifier := notification.NewDiscord()
			first, second, err := loadRequest(requestPath)
			if err != nil {
				return err
			}

			opts := delivery.Options{
				OutputDir: outputDir,
				TempRoot:  tempRoot,
				Workers:   workers,
			}
			if !noProgress {
				opts.Progress = cmd.ErrOrStderr()
			}
			ui.PrintBanner(cmd.ErrOrStderr())
			ui.PrintInfo(cmd.ErrOrStderr(), fmt.Sprintf("Comparing %d quadrant archives per date", len(geo.Quadrants)))

			result, err := delivery.NewAnalyzer(opts, logger).Analyze(ctx, first, second)
			if err != nil {
				notify(notifier.SendError(ctx, err.Error()))
				return err
			}

			ui.PrintSuccess(cmd.ErrOrStderr(), "Change analysis finished")
			if result.Amplified {
				ui.PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("low change signal (std %.4g), enhanced view uses ±%.3g",
					result.DifferenceStd, result.AmplifiedLimit))
			}
			ui.PrintArtifacts(cmd.ErrOrStderr(), result.Artifacts)
			notify(notifier.SendSuccess(ctx, fmt.Sprintf("%d artifacts written to %s (amplified: %t)",
				len(result.Artifacts), opts.OutputDir, result.Amplified)))

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result.Artifacts)
		},
	}
	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "YAML or JSON file with first_date_images and second_date_images")
	cmd.Flags().StringVarP(&outputDir, "output", "o", properties.OutputDir(), "Directory for run artifacts")
	cmd.Flags().StringVar(&tempRoot, "temp-root", properties.TempRoot(), "Root for run-scoped scratch directories")
	cmd.Flags().IntVar(&workers, "workers", properties.Workers(), "Parallel mosaic and render jobs")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	cmd.MarkFlagRequired("request")
	return cmd
}

func notify(err error) {
	if err != nil {
		logger.Warn("Failed to send notification", zap.Error(err))
	}
}
