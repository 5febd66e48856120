package recognition

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeTestImage(t *testing.T, width, height int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, nil)
	}
	assert.NoError(t, err)
	return buf.Bytes()
}

func TestNormalizeRejectsNonImageContentType(t *testing.T) {
	n := NewNormalizer()

	_, _, err := n.Normalize("application/pdf", encodeTestImage(t, 100, 100, "jpeg"))
	assert.Error(t, err)
	assert.Equal(t, KindUnsupportedMediaType, KindOf(err))
}

func TestNormalizeRejectsUndecodableBytes(t *testing.T) {
	n := NewNormalizer()

	_, _, err := n.Normalize("image/jpeg", []byte("definitely not a jpeg"))
	assert.Error(t, err)
	assert.Equal(t, KindImageDecodeError, KindOf(err))
}

func TestNormalizeDownscalesToBox(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name           string
		width, height  int
		format         string
		expectedWidth  int
		expectedHeight int
	}{
		{name: "Landscape over both bounds", width: 1280, height: 960, format: "jpeg", expectedWidth: 640, expectedHeight: 480},
		{name: "Wide image bound by width", width: 1280, height: 240, format: "jpeg", expectedWidth: 640, expectedHeight: 120},
		{name: "Tall image bound by height", width: 320, height: 960, format: "png", expectedWidth: 160, expectedHeight: 480},
		{name: "Small image untouched", width: 200, height: 150, format: "png", expectedWidth: 200, expectedHeight: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, data, err := n.Normalize("image/"+tt.format, encodeTestImage(t, tt.width, tt.height, tt.format))
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedWidth, img.Bounds().Dx())
			assert.Equal(t, tt.expectedHeight, img.Bounds().Dy())

			// Output bytes are always canonical JPEG.
			decoded, format, err := image.Decode(bytes.NewReader(data))
			assert.NoError(t, err)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.expectedWidth, decoded.Bounds().Dx())
		})
	}
}
