package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ArchiveExtractor unpacks the raster entries of one kind of compressed bundle.
type ArchiveExtractor interface {
	Name() string
	Match(m *mimetype.MIME) bool
	// Extract writes every raster entry of src into dst and returns the written paths.
	Extract(src, dst string) ([]string, error)
}

// DefaultExtractors is the closed set of supported bundle formats.
func DefaultExtractors() []ArchiveExtractor {
	return []ArchiveExtractor{ZipExtractor{}, TarGzExtractor{}}
}

var rasterSuffixes = []string{".tif", ".tiff"}

func IsRasterName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range rasterSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func matchesMIME(m *mimetype.MIME, want string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true
		}
	}
	return false
}

// entryTarget flattens an archive entry to its base name inside dst, so
// entries can never be written outside the extraction directory.
func entryTarget(dst, name string) (string, bool) {
	base := filepath.Base(filepath.FromSlash(name))
	if base == "." || base == ".." || base == string(filepath.Separator) || !IsRasterName(base) {
		return "", false
	}
	return filepath.Join(dst, base), true
}

func writeEntry(target string, r io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return out.Close()
}

type ZipExtractor struct{}

func (ZipExtractor) Name() string { return "zip" }

func (ZipExtractor) Match(m *mimetype.MIME) bool {
	return matchesMIME(m, "application/zip")
}

func (ZipExtractor) Extract(src, dst string) ([]string, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip %s: %w", src, err)
	}
	defer reader.Close()

	var paths []string
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		target, ok := entryTarget(dst, file.Name)
		if !ok {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open zip entry %s: %w", file.Name, err)
		}
		err = writeEntry(target, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		paths = append(paths, target)
	}
	sort.Strings(paths)
	return paths, nil
}

type TarGzExtractor struct{}

func (TarGzExtractor) Name() string { return "tar.gz" }

func (TarGzExtractor) Match(m *mimetype.MIME) bool {
	return matchesMIME(m, "application/gzip")
}

func (TarGzExtractor) Extract(src, dst string) ([]string, error) {
	file, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip %s: %w", src, err)
	}
	defer gz.Close()

	var paths []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar %s: %w", src, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		target, ok := entryTarget(dst, header.Name)
		if !ok {
			continue
		}
		if err := writeEntry(target, tr); err != nil {
			return nil, err
		}
		paths = append(paths, target)
	}
	sort.Strings(paths)
	return paths, nil
}
