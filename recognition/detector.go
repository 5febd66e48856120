package recognition

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// FaceDetector finds face regions in a normalized image.
type FaceDetector interface {
	Detect(img image.Image) ([]image.Rectangle, error)
}

// PigoParams holds the cascade detector tuning knobs.
type PigoParams struct {
	MinSize          int
	MaxSize          int
	ShiftFactor      float64
	ScaleFactor      float64
	QualityThreshold float32
}

func DefaultPigoParams() PigoParams {
	return PigoParams{
		MinSize:          60,
		MaxSize:          640,
		ShiftFactor:      0.1,
		ScaleFactor:      1.1,
		QualityThreshold: 5.0,
	}
}

// PigoDetector detects faces with the pure-Go pigo cascade classifier.
type PigoDetector struct {
	classifier *pigo.Pigo
	params     PigoParams
}

func NewPigoDetector(cascadeFile string, params PigoParams) (*PigoDetector, error) {
	cascade, err := os.ReadFile(cascadeFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &PigoDetector{classifier: classifier, params: params}, nil
}

func (d *PigoDetector) Detect(img image.Image) ([]image.Rectangle, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Luminosity grayscale, row-major.
	pixels := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*width+x] = uint8((r*299 + g*587 + b*114) / 1000 / 256)
		}
	}

	cParams := pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     d.params.MaxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}

	dets := d.classifier.RunCascade(cParams, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	faces := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if det.Q > d.params.QualityThreshold {
			x := det.Col - det.Scale/2
			y := det.Row - det.Scale/2
			faces = append(faces, image.Rect(x, y, x+det.Scale, y+det.Scale))
		}
	}

	return faces, nil
}
