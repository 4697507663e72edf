package sentinel

import (
	"errors"
	"fmt"
)

var ErrBandNotFound = errors.New("band not found")

// Band is a Sentinel-2 band identifier as it appears in file names.
type Band string

const (
	Blue  Band = "2"
	Green Band = "3"
	Red   Band = "4"
	NIR   Band = "8"
)

// Bands lists the bands every quadrant archive must provide, in processing order.
var Bands = []Band{Blue, Green, Red, NIR}

func (b Band) Name() string {
	switch b {
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Red:
		return "red"
	case NIR:
		return "nir"
	}
	return fmt.Sprintf("B%s", string(b))
}

func (b Band) String() string {
	return "B" + string(b)
}
