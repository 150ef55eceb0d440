package geometry

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Mirror flips src horizontally: scale(-1, 1) followed by a translation by
// the image width, so the result covers the same extent as the source.
// Applying it twice restores every pixel.
func Mirror(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	return affine(src, f64.Aff3{
		-1, 0, float64(w),
		0, 1, 0,
	}, w, h)
}

// MirrorPoint applies the mirror transform to a single coordinate.
func MirrorPoint(x, y, width float64) (float64, float64) {
	return width - x, y
}

// Upright rotates an image stored with the given engine orientation so that
// its content top is at the top. Engines without an orientation hint are fed
// the result.
func Upright(src image.Image, tag EngineOrientation) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	switch tag {
	case EngineDown:
		return affine(src, f64.Aff3{
			-1, 0, float64(w),
			0, -1, float64(h),
		}, w, h)
	case EngineRight:
		// 90 degrees clockwise
		return affine(src, f64.Aff3{
			0, -1, float64(h),
			1, 0, 0,
		}, h, w)
	case EngineLeft:
		// 90 degrees counter-clockwise
		return affine(src, f64.Aff3{
			0, 1, 0,
			-1, 0, float64(w),
		}, h, w)
	default:
		return src
	}
}

// affine draws src through the source-to-destination matrix m into a new
// w x h RGBA image anchored at the origin. m is expressed for a source whose
// bounds start at the origin.
func affine(src image.Image, m f64.Aff3, w, h int) *image.RGBA {
	o := src.Bounds().Min
	m[2] -= m[0]*float64(o.X) + m[1]*float64(o.Y)
	m[5] -= m[3]*float64(o.X) + m[4]*float64(o.Y)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}
