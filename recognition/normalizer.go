package recognition

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// Uploads are downscaled to fit this box before detection so a
	// client-supplied 12MP photo cannot blow out detection latency.
	NormalMaxWidth  = 640
	NormalMaxHeight = 480

	normalJPEGQuality = 85
)

// Normalizer converts an uploaded photo into the canonical form the
// extractor works on: RGB, bounded dimensions, JPEG re-encoded.
type Normalizer struct {
	MaxWidth  int
	MaxHeight int
}

func NewNormalizer() *Normalizer {
	return &Normalizer{MaxWidth: NormalMaxWidth, MaxHeight: NormalMaxHeight}
}

// Normalize validates the declared content type, decodes data and scales
// it down to fit the configured box preserving aspect ratio. It returns
// the decoded image plus its canonical JPEG bytes. The transform is pure;
// it touches no shared state.
func (n *Normalizer) Normalize(contentType string, data []byte) (image.Image, []byte, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, NewError(KindUnsupportedMediaType, "Invalid file type. Please upload an image file.")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, WrapError(KindImageDecodeError, "Error loading image. Please try again with a different photo.", err)
	}

	img := n.scaleToFit(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: normalJPEGQuality}); err != nil {
		return nil, nil, WrapError(KindImageDecodeError, "Error processing image. Please try again.", err)
	}
	return img, buf.Bytes(), nil
}

// scaleToFit returns src redrawn as RGB within the MaxWidth x MaxHeight
// box. Images already inside the box are still redrawn so the extractor
// always sees the same color model.
func (n *Normalizer) scaleToFit(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > n.MaxWidth || height > n.MaxHeight {
		ratioW := float64(n.MaxWidth) / float64(width)
		ratioH := float64(n.MaxHeight) / float64(height)
		ratio := ratioW
		if ratioH < ratioW {
			ratio = ratioH
		}
		newWidth = int(float64(width) * ratio)
		newHeight = int(float64(height) * ratio)
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
