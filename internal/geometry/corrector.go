/**
 * Frame Geometry Corrector
 *
 * Turns a camera pixel buffer into the image handed to the recognition
 * engine: front-camera mirroring is undone and the physical orientation is
 * translated into the engine's orientation tag. Stateless per call.
 */

package geometry

import (
	stderrors "errors"
	"image"

	"github.com/mosijchuk/vision-camera-ocr/internal/errors"
	"github.com/mosijchuk/vision-camera-ocr/internal/orientation"
)

// CorrectedFrame is the recognition input for one frame.
type CorrectedFrame struct {
	Image       image.Image
	Orientation EngineOrientation
	Mirrored    bool
}

// Corrector performs mirror correction and orientation tagging.
type Corrector struct{}

// NewCorrector creates a new corrector
func NewCorrector() *Corrector {
	return &Corrector{}
}

// Correct materializes buf, flips it when mirrored and tags it with the
// engine orientation for o. A buffer that cannot be read yields a
// BufferAccessError.
func (c *Corrector) Correct(buf PixelBuffer, mirrored bool, o orientation.Orientation) (*CorrectedFrame, error) {
	if buf == nil {
		return nil, errors.NewBufferAccessError("", stderrors.New("no pixel buffer"))
	}

	img, err := buf.Image()
	if err != nil {
		if errors.IsCode(err, errors.ErrorBufferAccess) {
			return nil, err
		}
		return nil, errors.NewBufferAccessError("", err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.NewBufferAccessError("", stderrors.New("empty image"))
	}

	if mirrored {
		img = Mirror(img)
	}

	return &CorrectedFrame{
		Image:       img,
		Orientation: EngineOrientationFor(o),
		Mirrored:    mirrored,
	}, nil
}
