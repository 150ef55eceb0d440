package geometry

import (
	"github.com/mosijchuk/vision-camera-ocr/internal/orientation"
)

// EngineOrientation is the coordinate-frame hint handed to the recognition
// engine. It names the rotation that brings the stored image upright:
// Right is a 90 degree clockwise turn, Left counter-clockwise, Down 180.
type EngineOrientation int

const (
	EngineUp EngineOrientation = iota
	EngineDown
	EngineLeft
	EngineRight
)

func (e EngineOrientation) String() string {
	switch e {
	case EngineUp:
		return "up"
	case EngineDown:
		return "down"
	case EngineLeft:
		return "left"
	case EngineRight:
		return "right"
	default:
		return "unknown"
	}
}

// EngineOrientationFor maps a physical orientation to the engine tag. The
// camera sensor is mounted rotated, so portrait does not map to Up.
// Unknown values map to Up.
func EngineOrientationFor(o orientation.Orientation) EngineOrientation {
	switch o {
	case orientation.Portrait:
		return EngineRight
	case orientation.LandscapeLeft:
		return EngineUp
	case orientation.PortraitUpsideDown:
		return EngineLeft
	case orientation.LandscapeRight:
		return EngineDown
	default:
		return EngineUp
	}
}
