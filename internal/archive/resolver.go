package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyArchive      = errors.New("no raster files found in archive")
)

// Resolver turns a per-quadrant archive, or a bare raster, into the raster files it holds.
type Resolver struct {
	root       string
	extractors []ArchiveExtractor
	logger     *zap.Logger
}

// NewResolver extracts bundles under root. With no extractors the default set is used.
func NewResolver(root string, logger *zap.Logger, extractors ...ArchiveExtractor) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	return &Resolver{root: root, extractors: extractors, logger: logger}
}

func (r *Resolver) Root() string {
	return r.root
}

// ExtractDir is where the bundle at path is unpacked for the given prefix.
// The prefix keeps bundles with the same file name apart across dates and quadrants.
func (r *Resolver) ExtractDir(path, prefix string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSuffix(stem, ".tar")
	return filepath.Join(r.root, fmt.Sprintf("%s_%s", prefix, stem))
}

// Resolve returns the absolute, sorted raster paths available from path.
// Running it twice with the same path and prefix yields the same result.
func (r *Resolver) Resolve(path, prefix string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect format of %s: %w", path, err)
	}

	for _, extractor := range r.extractors {
		if !extractor.Match(mtype) {
			continue
		}
		dst := r.ExtractDir(path, prefix)
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create extraction directory %s: %w", dst, err)
		}
		paths, err := extractor.Extract(path, dst)
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyArchive, path)
		}
		resolved, err := absolute(slices.Compact(paths))
		if err != nil {
			return nil, err
		}
		r.logger.Debug("Extracted archive",
			zap.String("archive", path),
			zap.String("format", extractor.Name()),
			zap.String("dir", dst),
			zap.Int("rasters", len(resolved)))
		return resolved, nil
	}

	if IsRasterName(path) || matchesMIME(mtype, "image/tiff") {
		return absolute([]string{path})
	}
	return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, path, mtype.String())
}

func absolute(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
