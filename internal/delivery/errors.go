package delivery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/forest-guardian/geodiff/internal/geo"
	"github.com/forest-guardian/geodiff/internal/sentinel"
)

var ErrAnalysisFailed = errors.New("analysis failed")

// MosaicError names which of the eight band mosaics failed.
// Band is empty when the failure happened while resolving a quadrant archive,
// Quadrant is empty when the merge itself failed.
type MosaicError struct {
	Date     string
	Band     sentinel.Band
	Quadrant geo.Quadrant
	Err      error
}

func (e *MosaicError) Error() string {
	parts := []string{"date " + e.Date}
	if e.Band != "" {
		parts = append(parts, fmt.Sprintf("band %s (%s)", e.Band, e.Band.Name()))
	}
	if e.Quadrant != "" {
		parts = append(parts, "quadrant "+string(e.Quadrant))
	}
	return fmt.Sprintf("%s: %v", strings.Join(parts, ", "), e.Err)
}

func (e *MosaicError) Unwrap() error {
	return e.Err
}
