/**
 * Pixel buffers delivered by the camera pipeline
 *
 * A PixelBuffer is materialized into an image.Image once per frame. Any
 * failure to do so is a BufferAccessError for that frame.
 */

package geometry

import (
	"bytes"
	"fmt"
	"image"
	"math"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mosijchuk/vision-camera-ocr/internal/errors"
)

// PixelBuffer is a camera frame's pixel storage.
type PixelBuffer interface {
	Image() (image.Image, error)
}

// PixelFormat identifies the memory layout of a RawBuffer.
type PixelFormat string

const (
	FormatBGRA PixelFormat = "bgra"
	FormatRGBA PixelFormat = "rgba"
	FormatGray PixelFormat = "gray"
)

func (f PixelFormat) bytesPerPixel() int {
	switch f {
	case FormatBGRA, FormatRGBA:
		return 4
	case FormatGray:
		return 1
	default:
		return 0
	}
}

// MaxPixels bounds the area of a raw frame (8192x8192).
const MaxPixels = 8192 * 8192

// RawBuffer is an uncompressed frame. Stride 0 means tightly packed rows.
type RawBuffer struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
	Data   []byte
}

// Image copies the buffer into an image. BGRA is swizzled to RGBA.
func (b *RawBuffer) Image() (image.Image, error) {
	if b == nil {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("nil buffer"))
	}

	bpp := b.Format.bytesPerPixel()
	if bpp == 0 {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("unsupported pixel format %q", b.Format))
	}
	if b.Width <= 0 || b.Height <= 0 {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("invalid dimensions %dx%d", b.Width, b.Height))
	}
	// Checked before any product is formed so untrusted sizes cannot overflow.
	if b.Width > MaxPixels/b.Height {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("dimensions %dx%d exceed %d pixels", b.Width, b.Height, MaxPixels))
	}

	stride := b.Stride
	if stride == 0 {
		stride = b.Width * bpp
	}
	if stride < b.Width*bpp {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("stride %d too small for width %d", stride, b.Width))
	}
	if b.Height > 1 && stride > (math.MaxInt-b.Width*bpp)/(b.Height-1) {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("stride %d too large for height %d", stride, b.Height))
	}
	need := stride*(b.Height-1) + b.Width*bpp
	if len(b.Data) < need {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("buffer holds %d bytes, need %d", len(b.Data), need))
	}

	rect := image.Rect(0, 0, b.Width, b.Height)

	if b.Format == FormatGray {
		img := image.NewGray(rect)
		for y := 0; y < b.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+b.Width], b.Data[y*stride:])
		}
		return img, nil
	}

	img := image.NewRGBA(rect)
	for y := 0; y < b.Height; y++ {
		src := b.Data[y*stride : y*stride+b.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+b.Width*4]
		if b.Format == FormatRGBA {
			copy(dst, src)
			continue
		}
		for x := 0; x < len(src); x += 4 {
			dst[x+0] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x+0]
			dst[x+3] = src[x+3]
		}
	}
	return img, nil
}

// EncodedBuffer holds a compressed still (PNG, JPEG, WebP, BMP or TIFF).
type EncodedBuffer struct {
	Data []byte
}

func (b *EncodedBuffer) Image() (image.Image, error) {
	if b == nil || len(b.Data) == 0 {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("empty encoded buffer"))
	}
	img, _, err := image.Decode(bytes.NewReader(b.Data))
	if err != nil {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("decode: %w", err))
	}
	return img, nil
}

// ImageBuffer wraps an already decoded image.
type ImageBuffer struct {
	Img image.Image
}

func (b ImageBuffer) Image() (image.Image, error) {
	if b.Img == nil {
		return nil, errors.NewBufferAccessError("", fmt.Errorf("no image"))
	}
	return b.Img, nil
}
