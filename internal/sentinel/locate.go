package sentinel

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// tokens are the accepted spellings of a band id: as given and zero-padded to two digits.
func (b Band) tokens() []string {
	id := strings.ToLower(string(b))
	tokens := []string{"b" + id}
	if n, err := strconv.Atoi(id); err == nil {
		if padded := fmt.Sprintf("b%02d", n); padded != tokens[0] {
			tokens = append(tokens, padded)
		}
	}
	return tokens
}

func rasterStem(path string) (string, bool) {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range []string{".tiff", ".tif"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), true
		}
	}
	return "", false
}

// Matches reports whether path names a raster of band b, e.g. T32_B04.tif,
// response.B4.tif or b8.TIF.
func (b Band) Matches(path string) bool {
	stem, ok := rasterStem(path)
	if !ok {
		return false
	}
	for _, token := range b.tokens() {
		if strings.HasSuffix(stem, token) {
			return true
		}
	}
	return false
}

// Locate returns the first path in paths holding band b.
func Locate(paths []string, b Band) (string, error) {
	for _, path := range paths {
		if b.Matches(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s among %d rasters", ErrBandNotFound, b, len(paths))
}
