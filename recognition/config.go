package recognition

// Config holds the matching thresholds. The distance threshold mirrors
// the dlib-style 0.6 bound for 128-d encodings; the confidence bounds
// are percentages derived from distance via Confidence().
//
// Self-verification and open identification keep separate lower bounds
// on purpose: a kiosk accepts a weak 50-60% match (flagged for audit)
// while self-verification insists on 60%.
type Config struct {
	MatchThreshold       float64 `yaml:"matchThreshold"`
	SelfMinConfidence    float64 `yaml:"selfMinConfidence"`
	OpenStrongConfidence float64 `yaml:"openStrongConfidence"`
	OpenMinConfidence    float64 `yaml:"openMinConfidence"`
}

func DefaultConfig() Config {
	return Config{
		MatchThreshold:       0.6,
		SelfMinConfidence:    60,
		OpenStrongConfidence: 60,
		OpenMinConfidence:    50,
	}
}
