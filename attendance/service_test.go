package attendance

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/recognition"
	"github.com/stretchr/testify/assert"
)

type fakeDirectory struct {
	employees []core.Employee
	err       error
}

func (d *fakeDirectory) FindByID(ctx context.Context, employeeID uint) (*core.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	for i := range d.employees {
		if d.employees[i].EmployeeID == employeeID {
			return &d.employees[i], nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) ListEnrolled(ctx context.Context) ([]core.Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	var enrolled []core.Employee
	for _, emp := range d.employees {
		if emp.Active && len(emp.FaceEncoding) > 0 {
			enrolled = append(enrolled, emp)
		}
	}
	return enrolled, nil
}

type fakeRecorder struct {
	calls      int
	employeeID uint
	confidence float64
	transition Transition
	err        error
}

func (r *fakeRecorder) MarkRecognized(ctx context.Context, employeeID uint, now time.Time, confidence float64) (Transition, error) {
	r.calls++
	r.employeeID = employeeID
	r.confidence = confidence
	if r.err != nil {
		return "", r.err
	}
	return r.transition, nil
}

type fakeNotifier struct {
	auditCalls int
	auditCode  string
	faultCalls int
}

func (n *fakeNotifier) MediumConfidenceMatch(employeeCode string, confidence float64) {
	n.auditCalls++
	n.auditCode = employeeCode
}

func (n *fakeNotifier) UnexpectedFault(scope string, err error) {
	n.faultCalls++
}

type fixedExtractor struct {
	encoding []float64
	err      error
}

func (e *fixedExtractor) Extract(img image.Image) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.encoding, nil
}

func encVec(t *testing.T, x float64) ([]float64, []byte) {
	t.Helper()
	vec := make([]float64, recognition.EncodingDim)
	vec[0] = x
	raw, err := recognition.MarshalEncoding(vec)
	assert.NoError(t, err)
	return vec, raw
}

func captureJPEG(t *testing.T) Capture {
	t.Helper()
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 64)), nil)
	assert.NoError(t, err)
	return Capture{ContentType: "image/jpeg", Data: buf.Bytes()}
}

func newTestService(extractor Extractor, directory Directory, recorder Recorder, notifier Notifier) *Service {
	svc := NewService(
		recognition.NewNormalizer(),
		extractor,
		recognition.NewMatcher(recognition.DefaultConfig()),
		recognition.NewEncodingStore(),
		directory,
		recorder,
		notifier,
	)
	svc.now = func() time.Time { return time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestIdentifyAnyStrongMatch(t *testing.T) {
	probe, _ := encVec(t, 0)
	_, rawNear := encVec(t, 0.3) // distance 0.3 -> 70%
	_, rawFar := encVec(t, 1.5)

	directory := &fakeDirectory{employees: []core.Employee{
		{EmployeeID: 1, Code: "EMP001", FirstName: "Ada", Surname: "Lovelace", Active: true, FaceEncoding: rawNear,
			Department: &core.Department{Name: "Engineering"}},
		{EmployeeID: 2, Code: "EMP002", FirstName: "Alan", Surname: "Turing", Active: true, FaceEncoding: rawFar},
		{EmployeeID: 3, Code: "EMP003", FirstName: "No", Surname: "Face", Active: true}, // no encoding, never a candidate
	}}
	recorder := &fakeRecorder{transition: TransitionCheckIn}

	svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, nil)
	outcome := svc.IdentifyAny(context.Background(), captureJPEG(t))

	assert.True(t, outcome.Success)
	assert.Equal(t, "EMP001", outcome.EmployeeCode)
	assert.Equal(t, "Ada Lovelace", outcome.EmployeeName)
	assert.Equal(t, "Engineering", outcome.Department)
	assert.Equal(t, "Checked In", outcome.AttendanceStatus)
	assert.Equal(t, "70.00%", outcome.Confidence)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, uint(1), recorder.employeeID)
}

func TestIdentifyAnyWeakMatchFlagsAudit(t *testing.T) {
	probe, _ := encVec(t, 0)
	_, raw := encVec(t, 0.45) // 55% -> accepted, flagged

	directory := &fakeDirectory{employees: []core.Employee{
		{EmployeeID: 4, Code: "EMP004", FirstName: "Grace", Surname: "Hopper", Active: true, FaceEncoding: raw},
	}}
	recorder := &fakeRecorder{transition: TransitionCheckOut}
	notifier := &fakeNotifier{}

	svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, notifier)
	outcome := svc.IdentifyAny(context.Background(), captureJPEG(t))

	assert.True(t, outcome.Success)
	assert.Equal(t, "Checked Out", outcome.AttendanceStatus)
	assert.Equal(t, 1, notifier.auditCalls)
	assert.Equal(t, "EMP004", notifier.auditCode)
}

func TestIdentifyAnyNoConfidentMatch(t *testing.T) {
	probe, _ := encVec(t, 0)
	_, raw := encVec(t, 0.55) // 45% -> rejected

	directory := &fakeDirectory{employees: []core.Employee{
		{EmployeeID: 5, Code: "EMP005", Active: true, FaceEncoding: raw},
	}}
	recorder := &fakeRecorder{}

	svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, nil)
	outcome := svc.IdentifyAny(context.Background(), captureJPEG(t))

	assert.False(t, outcome.Success)
	assert.Equal(t, string(recognition.KindNoConfidentMatch), outcome.ErrorType)
	assert.Equal(t, 0, recorder.calls, "no attendance mutation on rejection")
}

func TestIdentifyAnyPipelineRejections(t *testing.T) {
	probe, _ := encVec(t, 0)
	_, raw := encVec(t, 0.1)
	directory := &fakeDirectory{employees: []core.Employee{
		{EmployeeID: 6, Code: "EMP006", Active: true, FaceEncoding: raw},
	}}

	tests := []struct {
		name         string
		capture      Capture
		extractor    Extractor
		expectedType string
	}{
		{
			name:         "Unsupported media type",
			capture:      Capture{ContentType: "application/pdf", Data: []byte("%PDF")},
			extractor:    &fixedExtractor{encoding: probe},
			expectedType: string(recognition.KindUnsupportedMediaType),
		},
		{
			name:         "Undecodable image",
			capture:      Capture{ContentType: "image/jpeg", Data: []byte("junk")},
			extractor:    &fixedExtractor{encoding: probe},
			expectedType: string(recognition.KindImageDecodeError),
		},
		{
			name:         "No face detected",
			capture:      Capture{},
			extractor:    &fixedExtractor{err: recognition.NewError(recognition.KindNoFaceDetected, "No face detected in the image.")},
			expectedType: string(recognition.KindNoFaceDetected),
		},
		{
			name:         "Multiple faces detected",
			capture:      Capture{},
			extractor:    &fixedExtractor{err: recognition.NewError(recognition.KindMultipleFacesDetected, "Multiple faces detected.")},
			expectedType: string(recognition.KindMultipleFacesDetected),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := tt.capture
			if capture.ContentType == "" {
				capture = captureJPEG(t)
			}
			recorder := &fakeRecorder{}
			svc := newTestService(tt.extractor, directory, recorder, nil)

			outcome := svc.IdentifyAny(context.Background(), capture)
			assert.False(t, outcome.Success)
			assert.Equal(t, tt.expectedType, outcome.ErrorType)
			assert.Equal(t, 0, recorder.calls)
		})
	}
}

func TestIdentifyAnyDuplicateIsBenign(t *testing.T) {
	probe, _ := encVec(t, 0)
	_, raw := encVec(t, 0.2)

	directory := &fakeDirectory{employees: []core.Employee{
		{EmployeeID: 7, Code: "EMP007", FirstName: "Edsger", Surname: "Dijkstra", Active: true, FaceEncoding: raw},
	}}
	recorder := &fakeRecorder{err: recognition.NewError(recognition.KindDuplicateAttendance, "Attendance already recorded for today.")}

	svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, nil)
	outcome := svc.IdentifyAny(context.Background(), captureJPEG(t))

	assert.True(t, outcome.Success)
	assert.Equal(t, "Already Checked Out", outcome.AttendanceStatus)
}

func TestIdentifyAnyUnexpectedFault(t *testing.T) {
	probe, _ := encVec(t, 0)
	directory := &fakeDirectory{err: errors.New("storage unavailable")}
	notifier := &fakeNotifier{}

	svc := newTestService(&fixedExtractor{encoding: probe}, directory, &fakeRecorder{}, notifier)
	outcome := svc.IdentifyAny(context.Background(), captureJPEG(t))

	assert.False(t, outcome.Success)
	assert.Equal(t, string(recognition.KindUnexpected), outcome.ErrorType)
	// Internals must not leak to the caller.
	assert.NotContains(t, outcome.Message, "storage unavailable")
	assert.Equal(t, 1, notifier.faultCalls)
}

func TestVerifySelf(t *testing.T) {
	_, ownRaw := encVec(t, 0.7)   // distance 0.7 from probe -> mismatch
	_, otherRaw := encVec(t, 0.1) // another employee much closer
	probe, _ := encVec(t, 0)

	directory := &fakeDirectory{employees: []core.Employee{
		{EmployeeID: 1, Code: "EMP001", Active: true, FaceEncoding: ownRaw},
		{EmployeeID: 2, Code: "EMP002", Active: true, FaceEncoding: otherRaw},
	}}

	t.Run("Never matches another employee's encoding", func(t *testing.T) {
		recorder := &fakeRecorder{}
		svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, nil)

		outcome := svc.VerifySelf(context.Background(), 1, captureJPEG(t))
		assert.False(t, outcome.Success)
		assert.Equal(t, string(recognition.KindFaceMismatch), outcome.ErrorType)
		assert.Equal(t, 0, recorder.calls)
	})

	t.Run("Match against own encoding", func(t *testing.T) {
		recorder := &fakeRecorder{transition: TransitionCheckIn}
		svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, nil)

		outcome := svc.VerifySelf(context.Background(), 2, captureJPEG(t))
		assert.True(t, outcome.Success)
		assert.Equal(t, "EMP002", outcome.EmployeeCode)
		assert.Equal(t, uint(2), recorder.employeeID)
	})

	t.Run("No registered encoding", func(t *testing.T) {
		noFace := &fakeDirectory{employees: []core.Employee{{EmployeeID: 3, Code: "EMP003", Active: true}}}
		recorder := &fakeRecorder{}
		svc := newTestService(&fixedExtractor{encoding: probe}, noFace, recorder, nil)

		outcome := svc.VerifySelf(context.Background(), 3, captureJPEG(t))
		assert.False(t, outcome.Success)
		assert.Equal(t, string(recognition.KindFaceMismatch), outcome.ErrorType)
		assert.Equal(t, 0, recorder.calls)
	})
}

func TestReEnrollmentUsesFreshEncoding(t *testing.T) {
	probe, _ := encVec(t, 0)
	_, staleRaw := encVec(t, 1.5) // would never match
	_, freshRaw := encVec(t, 0.2) // matches at 80%

	emp := core.Employee{EmployeeID: 9, Code: "EMP009", Active: true, FaceEncoding: staleRaw}
	directory := &fakeDirectory{employees: []core.Employee{emp}}
	recorder := &fakeRecorder{transition: TransitionCheckIn}

	svc := newTestService(&fixedExtractor{encoding: probe}, directory, recorder, nil)

	outcome := svc.IdentifyAny(context.Background(), captureJPEG(t))
	assert.False(t, outcome.Success)

	// Re-enrollment replaces the stored bytes and invalidates the cache.
	directory.employees[0].FaceEncoding = freshRaw
	svc.store.Invalidate(9)

	outcome = svc.IdentifyAny(context.Background(), captureJPEG(t))
	assert.True(t, outcome.Success)
	assert.Equal(t, "EMP009", outcome.EmployeeCode)
	assert.Equal(t, "80.00%", outcome.Confidence)
}
