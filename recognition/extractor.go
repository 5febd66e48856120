package recognition

import "image"

// Extractor runs detection and encoding over a normalized image. It is
// the only pipeline stage allowed to reject based on image content;
// everything downstream assumes a valid single encoding.
type Extractor struct {
	detector FaceDetector
	encoder  FaceEncoder
}

func NewExtractor(detector FaceDetector, encoder FaceEncoder) *Extractor {
	return &Extractor{detector: detector, encoder: encoder}
}

// Extract detects face regions in img and encodes the single detected
// face. Ambiguous captures (more than one face) are rejected rather
// than guessed at.
func (x *Extractor) Extract(img image.Image) ([]float64, error) {
	faces, err := x.detector.Detect(img)
	if err != nil {
		return nil, WrapError(KindEncodingError, "Error detecting faces. Please ensure good lighting and clear face visibility.", err)
	}

	if len(faces) == 0 {
		return nil, NewError(KindNoFaceDetected, "No face detected in the image. Please ensure your face is clearly visible.")
	}
	if len(faces) > 1 {
		return nil, NewError(KindMultipleFacesDetected, "Multiple faces detected. Please ensure only one face is in the frame.")
	}

	encoding, err := x.encoder.Encode(img, faces[0])
	if err != nil {
		return nil, WrapError(KindEncodingError, "Error processing face features. Please try again with a clearer photo.", err)
	}
	return encoding, nil
}
