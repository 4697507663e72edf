package artifact

import (
	"fmt"
	"os"

	"github.com/forest-guardian/geodiff/internal/raster"
	"github.com/gocarina/gocsv"
)

// StatsRow is one line of the per-raster statistics report.
type StatsRow struct {
	Raster      string  `csv:"raster"`
	ValidPixels int     `csv:"valid_pixels"`
	TotalPixels int     `csv:"total_pixels"`
	Min         float64 `csv:"min"`
	Max         float64 `csv:"max"`
	Mean        float64 `csv:"mean"`
	Std         float64 `csv:"std"`
	Low         float64 `csv:"p_low"`
	High        float64 `csv:"p_high"`
	Degenerate  bool    `csv:"degenerate"`
}

func NewStatsRow(name string, s raster.Stats, degenerate bool) StatsRow {
	return StatsRow{
		Raster:      name,
		ValidPixels: s.Valid,
		TotalPixels: s.Total,
		Min:         s.Min,
		Max:         s.Max,
		Mean:        s.Mean,
		Std:         s.Std,
		Low:         s.Low,
		High:        s.High,
		Degenerate:  degenerate,
	}
}

func WriteStats(path string, rows []StatsRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create stats report %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write stats report %s: %w", path, err)
	}
	return file.Close()
}

func ReadStats(path string) ([]StatsRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []StatsRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read stats report %s: %w", path, err)
	}
	return rows, nil
}
