package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/forest-guardian/geodiff/internal/archive"
	"github.com/forest-guardian/geodiff/internal/artifact"
	"github.com/forest-guardian/geodiff/internal/geo"
	"github.com/forest-guardian/geodiff/internal/mosaic"
	"github.com/forest-guardian/geodiff/internal/raster"
	"github.com/forest-guardian/geodiff/internal/sentinel"
	"github.com/forest-guardian/geodiff/internal/session"
	"github.com/forest-guardian/geodiff/output"
	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	FirstDate  = "first"
	SecondDate = "second"
)

var dates = []string{FirstDate, SecondDate}

// Artifact names, also used as file stems in the output directory.
const (
	ArtifactRGBFirst          = "rgb_first"
	ArtifactRGBSecond         = "rgb_second"
	ArtifactNIRFirst          = "nir_first"
	ArtifactNIRSecond         = "nir_second"
	ArtifactNDVIFirst         = "ndvi_first"
	ArtifactNDVISecond        = "ndvi_second"
	ArtifactNDVIDiff          = "ndvi_diff"
	ArtifactNDVIDiffEnhanced  = "ndvi_diff_enhanced"
	ArtifactNDVIDiffRaster    = "ndvi_diff_raster"
	differenceRasterFile      = "ndvi_diff.tif"
	statsFile                 = "stats.csv"
	manifestFile              = "manifest.json"
	defaultWorkers            = 4
	mosaicProgressDescription = "Building band mosaics"
)

type Options struct {
	OutputDir string
	TempRoot  string
	Workers   int
	// Progress receives a progress bar for the mosaic stage when set.
	Progress io.Writer
}

type Result struct {
	RunID            string
	Artifacts        map[string]string
	DifferenceRaster string
	DisplayLimit     float64
	DifferenceStd    float64
	Amplified        bool
	AmplifiedLimit   float64
	Report           string
	Manifest         string
}

type Analyzer struct {
	opts   Options
	logger *zap.Logger
}

func NewAnalyzer(opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.TempRoot == "" {
		opts.TempRoot = filepath.Join(os.TempDir(), "geodiff")
	}
	return &Analyzer{opts: opts, logger: logger}
}

// Analyze builds per-band mosaics for both dates, derives NDVI for each and
// renders the change between them. Either every artifact is produced or an
// error wrapping ErrAnalysisFailed is returned. Scratch files never outlive the call.
func (a *Analyzer) Analyze(ctx context.Context, first, second geo.QuadrantPaths) (*Result, error) {
	result, err := a.analyze(ctx, first, second)
	if err != nil {
		a.logger.Error("Analysis failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}
	return result, nil
}

// run carries the state of one Analyze call.
type run struct {
	*Analyzer
	sess     *session.Session
	resolver *archive.Resolver
	logger   *zap.Logger

	// rasters[date][quadrant] lists what each quadrant archive resolved to.
	rasters map[string]map[geo.Quadrant][]string
	// mosaics[date][band] is the merged band raster.
	mosaics map[string]map[sentinel.Band]string
	mu      sync.Mutex
}

func (a *Analyzer) analyze(ctx context.Context, first, second geo.QuadrantPaths) (*Result, error) {
	inputs := map[string]geo.QuadrantPaths{FirstDate: first, SecondDate: second}
	for _, date := range dates {
		if err := inputs[date].Validate(); err != nil {
			return nil, fmt.Errorf("%s date images: %w", date, err)
		}
	}

	sess, err := session.New(a.opts.TempRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			a.logger.Warn("Failed to remove run directory", zap.String("dir", sess.Root()), zap.Error(err))
		}
	}()
	extractRoot, err := sess.Dir("extracted")
	if err != nil {
		return nil, err
	}

	r := &run{
		Analyzer: a,
		sess:     sess,
		resolver: archive.NewResolver(extractRoot, a.logger),
		logger:   a.logger.With(zap.String("run_id", sess.ID())),
		rasters:  map[string]map[geo.Quadrant][]string{},
		mosaics:  map[string]map[sentinel.Band]string{},
	}
	for _, date := range dates {
		r.rasters[date] = map[geo.Quadrant][]string{}
		r.mosaics[date] = map[sentinel.Band]string{}
	}
	r.logger.Info("Starting difference analysis", zap.String("temp_dir", sess.Root()))

	if err := r.resolveArchives(ctx, inputs); err != nil {
		return nil, err
	}
	if err := r.buildMosaics(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.render()
}

// resolveArchives resolves each of the eight quadrant archives once.
func (r *run) resolveArchives(ctx context.Context, inputs map[string]geo.QuadrantPaths) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, date := range dates {
		for _, q := range geo.Quadrants {
			date, q, path := date, q, inputs[date][q]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				paths, err := r.resolver.Resolve(path, fmt.Sprintf("%s_%s", date, q))
				if err != nil {
					return &MosaicError{Date: date, Quadrant: q, Err: err}
				}
				r.mu.Lock()
				r.rasters[date][q] = paths
				r.mu.Unlock()
				return nil
			})
		}
	}
	return g.Wait()
}

// buildMosaics merges every band of every date in parallel, one scratch directory per date.
func (r *run) buildMosaics(ctx context.Context) error {
	var bar *progressbar.ProgressBar
	if r.opts.Progress != nil {
		bar = progressbar.NewOptions(len(dates)*len(sentinel.Bands),
			progressbar.OptionSetWriter(r.opts.Progress),
			progressbar.OptionSetDescription(mosaicProgressDescription))
		defer bar.Finish()
	}

	dirs := make(map[string]string, len(dates))
	for _, date := range dates {
		dir, err := r.sess.Dir("merged", date)
		if err != nil {
			return err
		}
		dirs[date] = dir
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for _, date := range dates {
		for _, band := range sentinel.Bands {
			date, band, dir := date, band, dirs[date]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				path, err := r.buildMosaic(date, band, dir)
				if err != nil {
					return err
				}
				r.mu.Lock()
				r.mosaics[date][band] = path
				r.mu.Unlock()
				if bar != nil {
					bar.Add(1)
				}
				return nil
			})
		}
	}
	return g.Wait()
}

func (r *run) buildMosaic(date string, band sentinel.Band, dir string) (string, error) {
	r.mu.Lock()
	resolved := r.rasters[date]
	r.mu.Unlock()

	paths := make([]string, 0, len(geo.Quadrants))
	for _, q := range geo.Quadrants {
		path, err := sentinel.Locate(resolved[q], band)
		if err != nil {
			return "", &MosaicError{Date: date, Band: band, Quadrant: q, Err: err}
		}
		paths = append(paths, path)
	}

	dst := filepath.Join(dir, fmt.Sprintf("merged_band_%s.tif", band))
	if _, err := mosaic.Build(paths, dst, r.logger); err != nil {
		return "", &MosaicError{Date: date, Band: band, Err: err}
	}
	r.logger.Debug("Band mosaic built", zap.String("date", date), zap.Stringer("band", band), zap.String("path", dst))
	return dst, nil
}

// loadBands reads the four band mosaics of date.
func (r *run) loadBands(date string) (map[sentinel.Band]*raster.Grid, error) {
	grids := make(map[sentinel.Band]*raster.Grid, len(sentinel.Bands))
	for _, band := range sentinel.Bands {
		src := raster.FileSource{Path: r.mosaics[date][band]}
		grid, err := src.Grid()
		if err != nil {
			return nil, &MosaicError{Date: date, Band: band, Err: err}
		}
		stats := raster.Describe(grid, raster.NormalizeLow, raster.NormalizeHigh)
		r.logger.Debug("Band mosaic statistics",
			zap.String("date", date),
			zap.String("band", band.Name()),
			zap.Int("valid_pixels", stats.Valid),
			zap.Float64("min", stats.Min),
			zap.Float64("max", stats.Max),
			zap.Float64("mean", stats.Mean))
		grids[band] = grid
	}
	return grids, nil
}

func (r *run) render() (*Result, error) {
	bands := map[string]map[sentinel.Band]*raster.Grid{}
	indexes := map[string]*sentinel.Index{}
	for _, date := range dates {
		grids, err := r.loadBands(date)
		if err != nil {
			return nil, err
		}
		bands[date] = grids
		index, err := sentinel.ComputeNDVI(
			raster.GridSource{Label: date + "_" + sentinel.Red.Name(), Data: grids[sentinel.Red]},
			raster.GridSource{Label: date + "_" + sentinel.NIR.Name(), Data: grids[sentinel.NIR]},
		)
		if err != nil {
			return nil, fmt.Errorf("%s date: %w", date, err)
		}
		indexes[date] = index
	}

	diff, err := ComputeDifference(indexes[FirstDate], indexes[SecondDate])
	if err != nil {
		return nil, fmt.Errorf("cannot compare dates: %w", err)
	}
	r.logger.Info("NDVI difference",
		zap.Float64("min", diff.Stats.Min),
		zap.Float64("max", diff.Stats.Max),
		zap.Float64("std", diff.Stats.Std),
		zap.Float64("display_limit", diff.Limit),
		zap.Bool("amplified", diff.Amplified != nil))

	outDir, err := filepath.Abs(r.opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	rr := newRenderer(outDir, r.opts.Workers, r.logger)
	for _, date := range dates {
		r.renderDate(rr, date, bands[date], indexes[date])
	}
	rr.figure(ArtifactNDVIDiff, diff.Grid, output.Figure{
		Title:    ArtifactNDVIDiff,
		Colormap: output.RdBuR,
		Min:      -diff.Limit,
		Max:      diff.Limit,
		Label:    "NDVI change",
	})
	if diff.Amplified != nil {
		rr.figure(ArtifactNDVIDiffEnhanced, diff.Amplified, output.Figure{
			Title:    fmt.Sprintf("%s (x%d)", ArtifactNDVIDiffEnhanced, AmplificationFactor),
			Colormap: output.RdBuR,
			Min:      -diff.AmplifiedLimit,
			Max:      diff.AmplifiedLimit,
			Label:    "NDVI change",
		})
	} else if err := os.Remove(filepath.Join(outDir, ArtifactNDVIDiffEnhanced+".png")); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("Failed to remove stale enhanced difference", zap.Error(err))
	}
	rr.submit(ArtifactNDVIDiffRaster, differenceRasterFile, func(path string) error {
		return raster.WriteFloat32(path, diff.Grid)
	})
	rr.stats(ArtifactNDVIDiff, diff.Stats, false)

	artifacts, rows, err := rr.wait()
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:            r.sess.ID(),
		Artifacts:        artifacts,
		DifferenceRaster: artifacts[ArtifactNDVIDiffRaster],
		DisplayLimit:     diff.Limit,
		DifferenceStd:    diff.Stats.Std,
		Amplified:        diff.Amplified != nil,
		AmplifiedLimit:   diff.AmplifiedLimit,
		Report:           filepath.Join(outDir, statsFile),
		Manifest:         filepath.Join(outDir, manifestFile),
	}
	if err := artifact.WriteStats(result.Report, rows); err != nil {
		return nil, err
	}
	if err := artifact.Save(result.Manifest, manifestOf(result, rows)); err != nil {
		return nil, err
	}
	r.logger.Info("Difference analysis finished", zap.Int("artifacts", len(artifacts)), zap.String("output_dir", outDir))
	return result, nil
}

func (r *run) renderDate(rr *renderer, date string, grids map[sentinel.Band]*raster.Grid, index *sentinel.Index) {
	rgbName, nirName, ndviName := ArtifactRGBFirst, ArtifactNIRFirst, ArtifactNDVIFirst
	if date == SecondDate {
		rgbName, nirName, ndviName = ArtifactRGBSecond, ArtifactNIRSecond, ArtifactNDVISecond
	}

	rr.submit(rgbName, rgbName+".png", func(path string) error {
		channels := make([]*raster.Grid, 0, 3)
		for _, band := range []sentinel.Band{sentinel.Red, sentinel.Green, sentinel.Blue} {
			channels = append(channels, rr.normalize(date+"_"+band.Name(), grids[band]))
		}
		return output.SaveRGB(path, channels[0], channels[1], channels[2])
	})
	rr.submit(nirName, nirName+".png", func(path string) error {
		return output.SaveGray(path, rr.normalize(date+"_"+sentinel.NIR.Name(), grids[sentinel.NIR]))
	})
	rr.figure(ndviName, index.Normalized, output.Figure{
		Title:    ndviName,
		Colormap: output.RdYlGn,
		Min:      0,
		Max:      1,
		Label:    "NDVI (0-1)",
	})
	rr.stats(ndviName, raster.Describe(index.Raw, DifferenceLow, DifferenceHigh), false)
}

func manifestOf(result *Result, rows []artifact.StatsRow) artifact.Manifest {
	m := artifact.Manifest{
		RunID:          result.RunID,
		Artifacts:      result.Artifacts,
		DisplayLimit:   result.DisplayLimit,
		DifferenceStd:  result.DifferenceStd,
		Amplified:      result.Amplified,
		AmplifiedLimit: result.AmplifiedLimit,
	}
	for _, row := range rows {
		if row.Degenerate {
			m.DegenerateBands = append(m.DegenerateBands, row.Raster)
		}
	}
	return m
}

// renderer writes artifacts on a worker pool and keeps the first failure.
type renderer struct {
	dir    string
	logger *zap.Logger
	wp     *workerpool.WorkerPool

	mu        sync.Mutex
	artifacts map[string]string
	rows      []artifact.StatsRow

	errOnce sync.Once
	err     error
}

func newRenderer(dir string, workers int, logger *zap.Logger) *renderer {
	return &renderer{
		dir:       dir,
		logger:    logger,
		wp:        workerpool.New(workers),
		artifacts: map[string]string{},
	}
}

func (rr *renderer) submit(name, file string, write func(path string) error) {
	path := filepath.Join(rr.dir, file)
	rr.wp.Submit(func() {
		if err := write(path); err != nil {
			rr.errOnce.Do(func() { rr.err = fmt.Errorf("failed to write %s: %w", name, err) })
			return
		}
		rr.mu.Lock()
		rr.artifacts[name] = path
		rr.mu.Unlock()
		rr.logger.Debug("Artifact written", zap.String("name", name), zap.String("path", path))
	})
}

func (rr *renderer) figure(name string, grid *raster.Grid, fig output.Figure) {
	rr.submit(name, name+".png", func(path string) error {
		return output.SaveColormapped(path, grid, fig)
	})
}

func (rr *renderer) stats(name string, s raster.Stats, degenerate bool) {
	rr.mu.Lock()
	rr.rows = append(rr.rows, artifact.NewStatsRow(name, s, degenerate))
	rr.mu.Unlock()
}

// normalize stretches a band for display and records its statistics.
func (rr *renderer) normalize(name string, g *raster.Grid) *raster.Grid {
	stats := raster.Describe(g, raster.NormalizeLow, raster.NormalizeHigh)
	out, degenerate := raster.Normalize(g)
	if degenerate {
		rr.logger.Warn("Constant raster normalized to zeros", zap.String("raster", name), zap.Float64("value", stats.Min))
	}
	rr.stats(name, stats, degenerate)
	return out
}

func (rr *renderer) wait() (map[string]string, []artifact.StatsRow, error) {
	rr.wp.StopWait()
	if rr.err != nil {
		return nil, nil, rr.err
	}
	sort.Slice(rr.rows, func(i, j int) bool { return rr.rows[i].Raster < rr.rows[j].Raster })
	return rr.artifacts, rr.rows, nil
}
