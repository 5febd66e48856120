package recognition

import (
	"errors"
	"fmt"
)

// Kind identifies the stage/reason a recognition request was rejected.
// Values double as the wire-level errorType in API responses.
type Kind string

const (
	KindUnsupportedMediaType  Kind = "invalid_file"
	KindImageDecodeError      Kind = "image_decode_error"
	KindNoFaceDetected        Kind = "no_face_detected"
	KindMultipleFacesDetected Kind = "multiple_faces"
	KindEncodingError         Kind = "encoding_error"
	KindFaceMismatch          Kind = "face_mismatch"
	KindLowConfidence         Kind = "low_confidence"
	KindNoConfidentMatch      Kind = "no_match"
	KindDuplicateAttendance   Kind = "duplicate_attendance"
	KindUnexpected            Kind = "unexpected_error"
)

// Error is the result type carried through the recognition pipeline.
// Expected rejections (no face, low confidence, ...) are values of this
// type and are propagated by early return, never by panic.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err. Anything that is not a pipeline
// rejection is reported as KindUnexpected so internals never leak.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnexpected
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the user-facing message for err. Unexpected faults
// get a generic message; the details stay in the server log.
func MessageOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return "Unexpected error. Please try again or contact administrator."
}
