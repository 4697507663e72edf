package mosaic

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/geodiff/internal/raster"
	"go.uber.org/zap"
)

var (
	ErrNoRastersToMerge = errors.New("no rasters to merge")
	ErrMergeFailed      = errors.New("merge failed")
)

// warpSwitches merge onto the union extent; where inputs overlap the later one wins.
var warpSwitches = []string{"-of", "GTiff", "-overwrite"}

// Build merges same-band rasters into output and returns output.
// A single input is copied verbatim. Every handle opened here is closed before return.
func Build(paths []string, output string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch len(paths) {
	case 0:
		return "", ErrNoRastersToMerge
	case 1:
		if err := copyFile(paths[0], output); err != nil {
			return "", fmt.Errorf("%w: %w", ErrMergeFailed, err)
		}
		logger.Debug("Single raster copied as mosaic", zap.String("source", paths[0]), zap.String("output", output))
		return output, nil
	}

	datasets := make([]*godal.Dataset, 0, len(paths))
	defer func() {
		for _, ds := range datasets {
			ds.Close()
		}
	}()
	for _, path := range paths {
		ds, err := raster.Open(path)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrMergeFailed, err)
		}
		datasets = append(datasets, ds)
	}

	merged, err := godal.Warp(output, datasets, warpSwitches)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrMergeFailed, output, err)
	}
	structure := merged.Structure()
	if err := merged.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to flush %s: %w", ErrMergeFailed, output, err)
	}

	logger.Debug("Rasters merged",
		zap.Int("inputs", len(paths)),
		zap.String("output", output),
		zap.Int("width", structure.SizeX),
		zap.Int("height", structure.SizeY))
	return output, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
