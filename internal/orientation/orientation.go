/**
 * Physical device orientation
 *
 * Orientation is derived from gravity as measured by the accelerometer and
 * is independent of the UI rotation lock.
 */

package orientation

import (
	"context"
	"errors"
	"math"
)

// ErrNoSample is returned by a Source that has no reading newer than the
// last one it served. The classifier keeps its orientation without logging.
var ErrNoSample = errors.New("no new accelerometer sample")

// Orientation is the physical attitude of the device relative to gravity.
type Orientation int32

// Portrait is the zero value so that an unsampled classifier reports it.
const (
	Portrait Orientation = iota
	LandscapeLeft
	PortraitUpsideDown
	LandscapeRight
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case LandscapeLeft:
		return "landscape-left"
	case PortraitUpsideDown:
		return "portrait-upside-down"
	case LandscapeRight:
		return "landscape-right"
	default:
		return "unknown"
	}
}

// Valid reports whether o is one of the four known orientations.
func (o Orientation) Valid() bool {
	return o >= Portrait && o <= LandscapeRight
}

// Sample is one accelerometer reading along the device axes.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Source produces accelerometer samples on demand.
type Source interface {
	Read(ctx context.Context) (Sample, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Sample, error)

func (f SourceFunc) Read(ctx context.Context) (Sample, error) {
	return f(ctx)
}

// Classify maps a sample to an orientation.
//
// A dominant z axis means the device lies flat, which is treated as Portrait.
// Otherwise the larger of x and y decides between landscape and portrait,
// and its sign picks the side.
func Classify(s Sample) Orientation {
	ax, ay, az := math.Abs(s.X), math.Abs(s.Y), math.Abs(s.Z)

	if az > ax && az > ay {
		return Portrait
	}
	if ax > ay {
		if s.X > 0 {
			return LandscapeRight
		}
		return LandscapeLeft
	}
	if s.Y > 0 {
		return PortraitUpsideDown
	}
	return Portrait
}
