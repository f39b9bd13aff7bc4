package detect

// #region imports
import (
	"github.com/kereva-dev/attractor/internal/attractor"
)

// #endregion imports

// #region constants

const (
	// DefaultWeightSecondary scales triggered secondary attractors into the
	// combined score.
	DefaultWeightSecondary float32 = 2.0

	// secondaryIntensityBoost makes the secondary set more sensitive: it is
	// evaluated as though intensity were min(1.0, intensity * 1.2).
	secondaryIntensityBoost float32 = 1.2

	// intensityEpsilon floors the intensity divisor so intensity 0 demands
	// strong evidence instead of dividing by zero.
	intensityEpsilon float32 = 0.1
)

// #endregion constants

// #region context

// Context is the per-call detection input. Ephemeral.
type Context struct {
	Text             string
	ExemptedKeywords []string
	Intensity        float32 // detection aggressiveness in [0, 1]
	WeightSecondary  float32 // >= 0
	UseEmbeddings    bool
}

// NewContext returns a Context with default knobs for text.
func NewContext(text string) Context {
	return Context{
		Text:            text,
		Intensity:       1.0,
		WeightSecondary: DefaultWeightSecondary,
	}
}

// #endregion context

// #region skip

// Skip records an attractor that could not be evaluated this call.
// Skips are logged and surfaced, never silently dropped, so a degraded
// detection is distinguishable from a clean negative.
type Skip struct {
	AttractorID string
	Set         attractor.SourceSet
	Reason      string
}

// #endregion skip

// #region result

// Result is the combined verdict for one detection call. Ephemeral.
type Result struct {
	IsAttracted         bool
	KeywordScore        float32  // combined, weight-scaled score
	EmbeddingScore      float32  // max similarity observed, 0 if none computed
	TriggeredAttractors []string // prefixed ids in trigger order
	FlaggedKeywords     []string // sorted union of matches, post-exemption
	Skipped             []Skip
}

// #endregion result
