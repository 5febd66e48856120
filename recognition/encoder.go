package recognition

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"gocv.io/x/gocv"
)

// FaceEncoder turns one face region into a fixed-length encoding.
type FaceEncoder interface {
	Encode(img image.Image, region image.Rectangle) ([]float64, error)
}

// OpenFaceEncoder computes 128-d encodings with the OpenFace
// nn4.small2.v1 network (96x96 input) through the OpenCV DNN module.
type OpenFaceEncoder struct {
	net       gocv.Net
	inputSize image.Point
}

func NewOpenFaceEncoder(modelPath string) (*OpenFaceEncoder, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load face encoder model from %s", modelPath)
	}
	return &OpenFaceEncoder{net: net, inputSize: image.Pt(96, 96)}, nil
}

func (e *OpenFaceEncoder) Close() error {
	if !e.net.Empty() {
		return e.net.Close()
	}
	return nil
}

// Encode crops region out of img, runs it through the network and
// returns the L2-normalized encoding as float64, the precision the
// storage codec uses.
func (e *OpenFaceEncoder) Encode(img image.Image, region image.Rectangle) ([]float64, error) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return nil, errors.New("face region is outside the image")
	}

	crop := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(crop, crop.Bounds(), img, region.Min, draw.Src)

	mat, err := gocv.ImageToMatRGB(crop)
	if err != nil {
		return nil, fmt.Errorf("failed to convert face region: %w", err)
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, e.inputSize, 0, 0, gocv.InterpolationLinear)

	blob := gocv.BlobFromImage(resized, 1.0/255.0, e.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	output := e.net.Forward("")
	defer output.Close()

	if output.Total() != EncodingDim {
		return nil, fmt.Errorf("encoder produced %d values, want %d", output.Total(), EncodingDim)
	}

	vec := make([]float64, EncodingDim)
	for i := 0; i < EncodingDim; i++ {
		vec[i] = float64(output.GetFloatAt(0, i))
	}
	return normalizeEncoding(vec), nil
}

// normalizeEncoding scales vec to unit L2 norm.
func normalizeEncoding(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
