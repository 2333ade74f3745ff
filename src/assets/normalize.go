package assets

import (
	"bytes"
	"image"
	"image/color"

	// Register decoders for everything the upload surface accepts. Output
	// is always JPEG regardless of input format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/vanguardtable/vanguard/src/oops"
)

const jpegQuality = 85

/*
Normalize decodes image bytes and re-encodes them in a canonical form:

  - alpha is flattened onto an opaque white background
  - images larger than maxWidth x maxHeight are downscaled to fit, preserving
    aspect ratio, with Lanczos resampling
  - output is always JPEG at quality 85

Returns an error if the bytes cannot be decoded; callers decide whether that
is fatal (for uploads it is not - the original bytes get stored instead).
*/
func Normalize(content []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, oops.New(err, "failed to decode image")
	}

	img = flattenAlpha(img)

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth || bounds.Dy() > maxHeight {
		img = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	var out bytes.Buffer
	err = imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	if err != nil {
		return nil, oops.New(err, "failed to encode image")
	}

	return out.Bytes(), nil
}

// Composites an image onto an opaque white background if it carries any
// transparency. JPEG has no alpha channel, and letting the encoder drop
// alpha would turn transparent regions black.
func flattenAlpha(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}

	background := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	return imaging.OverlayCenter(background, img, 1.0)
}

func isOpaque(img image.Image) bool {
	if opaquer, ok := img.(interface{ Opaque() bool }); ok {
		return opaquer.Opaque()
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
