package attendance

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"faceclock.com/faceclock/core"
	"faceclock.com/faceclock/recognition"
)

// Capture is one uploaded face photograph.
type Capture struct {
	ContentType string
	Data        []byte
}

// Outcome is the structured result every recognition request produces,
// success or not. No pipeline error ever escapes past it.
type Outcome struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	ErrorType        string `json:"error_type,omitempty"`
	EmployeeCode     string `json:"employee_id,omitempty"`
	EmployeeName     string `json:"employee_name,omitempty"`
	Department       string `json:"department,omitempty"`
	AttendanceStatus string `json:"attendance_status,omitempty"`
	Confidence       string `json:"confidence,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
}

// Directory supplies employee data to the pipeline.
type Directory interface {
	FindByID(ctx context.Context, employeeID uint) (*core.Employee, error)
	ListEnrolled(ctx context.Context) ([]core.Employee, error)
}

// Recorder applies attendance transitions.
type Recorder interface {
	MarkRecognized(ctx context.Context, employeeID uint, now time.Time, confidence float64) (Transition, error)
}

// Extractor turns a normalized image into a face encoding.
type Extractor interface {
	Extract(img image.Image) ([]float64, error)
}

// Notifier receives out-of-band events. May be nil.
type Notifier interface {
	MediumConfidenceMatch(employeeCode string, confidence float64)
	UnexpectedFault(scope string, err error)
}

// Service runs the full pipeline: normalize, extract, match, record.
type Service struct {
	normalizer *recognition.Normalizer
	extractor  Extractor
	matcher    *recognition.Matcher
	store      *recognition.EncodingStore
	directory  Directory
	recorder   Recorder
	notifier   Notifier
	now        func() time.Time
}

func NewService(
	normalizer *recognition.Normalizer,
	extractor Extractor,
	matcher *recognition.Matcher,
	store *recognition.EncodingStore,
	directory Directory,
	recorder Recorder,
	notifier Notifier,
) *Service {
	return &Service{
		normalizer: normalizer,
		extractor:  extractor,
		matcher:    matcher,
		store:      store,
		directory:  directory,
		recorder:   recorder,
		notifier:   notifier,
		now:        time.Now,
	}
}

// VerifySelf matches the capture only against the caller's own stored
// encoding and, on success, advances the caller's attendance for today.
func (s *Service) VerifySelf(ctx context.Context, employeeID uint, capture Capture) Outcome {
	probe, err := s.extractProbe(capture)
	if err != nil {
		return s.failure("verify", err)
	}

	emp, err := s.directory.FindByID(ctx, employeeID)
	if err != nil {
		return s.failure("verify", err)
	}
	if emp == nil || len(emp.FaceEncoding) == 0 {
		return s.failure("verify", recognition.NewError(recognition.KindFaceMismatch,
			"No registered face found for your account. Please register your face first."))
	}

	reference, err := s.store.Get(emp.EmployeeID, emp.FaceEncoding)
	if err != nil {
		return s.failure("verify", err)
	}

	match, err := s.matcher.VerifySelf(probe, reference)
	if err != nil {
		return s.failure("verify", err)
	}
	match.EmployeeID = emp.EmployeeID

	return s.record(ctx, emp, match)
}

// IdentifyAny matches the capture against every enrolled employee and,
// on a confident match, advances that employee's attendance for today.
// Intended for privileged callers such as a shared kiosk.
func (s *Service) IdentifyAny(ctx context.Context, capture Capture) Outcome {
	probe, err := s.extractProbe(capture)
	if err != nil {
		return s.failure("identify", err)
	}

	employees, err := s.directory.ListEnrolled(ctx)
	if err != nil {
		return s.failure("identify", err)
	}

	candidates := make([]recognition.Candidate, 0, len(employees))
	byID := make(map[uint]*core.Employee, len(employees))
	for i := range employees {
		emp := &employees[i]
		vec, err := s.store.Get(emp.EmployeeID, emp.FaceEncoding)
		if err != nil {
			// A corrupt blob disqualifies this employee, not the request.
			log.Printf("[WARN] skipping encoding for employee %s: %v", emp.Code, err)
			continue
		}
		candidates = append(candidates, recognition.Candidate{EmployeeID: emp.EmployeeID, Encoding: vec})
		byID[emp.EmployeeID] = emp
	}

	match, err := s.matcher.IdentifyAny(probe, candidates)
	if err != nil {
		return s.failure("identify", err)
	}

	emp := byID[match.EmployeeID]
	if match.Audit {
		log.Printf("[INFO] medium-confidence match for %s: %.2f%%", emp.Code, match.Confidence)
		if s.notifier != nil {
			s.notifier.MediumConfidenceMatch(emp.Code, match.Confidence)
		}
	}

	return s.record(ctx, emp, match)
}

func (s *Service) extractProbe(capture Capture) ([]float64, error) {
	img, _, err := s.normalizer.Normalize(capture.ContentType, capture.Data)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(img)
}

func (s *Service) record(ctx context.Context, emp *core.Employee, match recognition.Match) Outcome {
	now := s.now()
	transition, err := s.recorder.MarkRecognized(ctx, emp.EmployeeID, now, match.Confidence)
	if err != nil {
		if recognition.IsKind(err, recognition.KindDuplicateAttendance) {
			// Lost a race with a simultaneous recognition; the record
			// already reflects today, so report the terminal state.
			transition = TransitionCompleted
		} else {
			return s.failure("record", err)
		}
	}

	outcome := Outcome{
		Success:          true,
		Message:          fmt.Sprintf("Successfully recognized %s!", emp.FullName()),
		EmployeeCode:     emp.Code,
		EmployeeName:     emp.FullName(),
		AttendanceStatus: string(transition),
		Confidence:       fmt.Sprintf("%.2f%%", match.Confidence),
		Timestamp:        now.Format("3:04 PM"),
	}
	if emp.Department != nil {
		outcome.Department = emp.Department.Name
	}
	return outcome
}

func (s *Service) failure(scope string, err error) Outcome {
	kind := recognition.KindOf(err)
	if kind == recognition.KindUnexpected {
		log.Printf("[ERROR] %s: %v", scope, err)
		if s.notifier != nil {
			s.notifier.UnexpectedFault(scope, err)
		}
	}
	return Outcome{
		Success:   false,
		Message:   recognition.MessageOf(err),
		ErrorType: string(kind),
	}
}
