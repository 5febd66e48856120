package recognition

import "math"

// Candidate is one enrolled employee's reference encoding. Employees
// without a stored encoding never become candidates.
type Candidate struct {
	EmployeeID uint
	Encoding   []float64
}

// Match is a successful comparison outcome.
type Match struct {
	EmployeeID uint
	Distance   float64
	Confidence float64
	// Audit is set when the match was accepted below the strong-match
	// bound and should be logged as a medium-confidence event.
	Audit bool
}

// EuclideanDistance returns the L2 distance between two encodings.
func EuclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ConfidenceFromDistance maps a distance to a percentage, clamped to [0, 100].
func ConfidenceFromDistance(distance float64) float64 {
	c := (1 - distance) * 100
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

type Matcher struct {
	cfg Config
}

func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg}
}

// VerifySelf compares the probe only against the caller's own reference
// encoding, regardless of what else is enrolled.
func (m *Matcher) VerifySelf(probe, reference []float64) (Match, error) {
	distance := EuclideanDistance(probe, reference)
	if distance > m.cfg.MatchThreshold {
		return Match{}, NewError(KindFaceMismatch, "Face verification failed")
	}
	confidence := ConfidenceFromDistance(distance)
	if confidence < m.cfg.SelfMinConfidence {
		return Match{}, NewError(KindLowConfidence, "Face matched with low confidence. Please try again with a clearer photo.")
	}
	return Match{Distance: distance, Confidence: confidence}, nil
}

// IdentifyAny compares the probe against every candidate and selects the
// one with minimum distance. Exactly equidistant candidates resolve to
// the lowest employee id, which keeps the result deterministic.
func (m *Matcher) IdentifyAny(probe []float64, candidates []Candidate) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, NewError(KindNoConfidentMatch, "No registered employees found in the system. Please register employee faces first.")
	}

	best := -1
	bestDistance := math.Inf(1)
	for i, c := range candidates {
		d := EuclideanDistance(probe, c.Encoding)
		if d < bestDistance || (d == bestDistance && best >= 0 && c.EmployeeID < candidates[best].EmployeeID) {
			best = i
			bestDistance = d
		}
	}

	confidence := ConfidenceFromDistance(bestDistance)
	if confidence < m.cfg.OpenMinConfidence {
		return Match{}, NewError(KindNoConfidentMatch, "Face not recognized. Please ensure you are a registered employee and try again.")
	}

	return Match{
		EmployeeID: candidates[best].EmployeeID,
		Distance:   bestDistance,
		Confidence: confidence,
		Audit:      confidence < m.cfg.OpenStrongConfidence,
	}, nil
}
