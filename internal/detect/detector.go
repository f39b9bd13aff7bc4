// Package detect fuses keyword and embedding signals into one verdict.
package detect

// #region imports
import (
	"log"
	"sort"

	"github.com/kereva-dev/attractor/internal/attractor"
	"github.com/kereva-dev/attractor/internal/keyword"
	"github.com/kereva-dev/attractor/internal/vectors"
)

// #endregion imports

// #region detector

// Detector evaluates text against both attractor sets.
// Stateless across calls; safe for shared use once the store is loaded.
type Detector struct {
	store *attractor.Store
}

// New creates a Detector over a loaded store.
func New(store *attractor.Store) *Detector {
	return &Detector{store: store}
}

// #endregion detector

// #region evaluate

// Evaluate runs the dual-mode detection algorithm. embedding is the
// caller-supplied vector for ctx.Text; nil degrades embedding-dependent
// attractors to skips. Deterministic for identical inputs.
func (d *Detector) Evaluate(ctx Context, embedding []float32) Result {
	intensity := clamp01(ctx.Intensity)

	ev := &evaluation{
		ctx:      ctx,
		exempted: keyword.ExemptionSet(ctx.ExemptedKeywords),
		embed:    embedding,
		flagged:  make(map[string]bool),
	}

	// Primary first at the caller's intensity, then secondary at the
	// boosted intensity. The boost is multiplicative and feeds straight
	// into the per-attractor threshold scaling.
	ev.evaluateSet(d.store.Get(attractor.SetPrimary), intensity)
	ev.evaluateSet(d.store.Get(attractor.SetSecondary), min32(1.0, intensity*secondaryIntensityBoost))

	flagged := make([]string, 0, len(ev.flagged))
	for k := range ev.flagged {
		flagged = append(flagged, k)
	}
	sort.Strings(flagged)
	if len(flagged) == 0 {
		flagged = nil
	}

	return Result{
		IsAttracted:         len(ev.triggered) > 0,
		KeywordScore:        ev.combined,
		EmbeddingScore:      ev.maxSim,
		TriggeredAttractors: ev.triggered,
		FlaggedKeywords:     flagged,
		Skipped:             ev.skipped,
	}
}

// #endregion evaluate

// #region evaluation-state

type evaluation struct {
	ctx      Context
	exempted map[string]bool
	embed    []float32

	combined    float32
	maxSim      float32
	simComputed bool
	triggered   []string
	flagged     map[string]bool
	skipped     []Skip
}

func (ev *evaluation) evaluateSet(set *attractor.Set, intensity float32) {
	if set == nil || set.Len() == 0 {
		return
	}
	for _, def := range set.Ordered() {
		if def.Kind == attractor.KindCentroid {
			ev.evaluateCentroid(def)
			continue
		}
		ev.evaluateKeywordDriven(def, intensity)
	}
}

// #endregion evaluation-state

// #region centroid-path

// evaluateCentroid checks a centroid-kind attractor on embedding
// similarity alone. It never touches keyword logic and contributes zero
// keyword score.
func (ev *evaluation) evaluateCentroid(def attractor.Definition) {
	if !def.HasCentroid() {
		ev.skip(def, "centroid kind without a vector")
		return
	}
	if !ev.ctx.UseEmbeddings {
		ev.skip(def, "embeddings disabled for this call")
		return
	}
	if ev.embed == nil {
		ev.skip(def, "no embedding supplied")
		return
	}

	sim, err := vectors.Cosine(ev.embed, def.Centroid)
	if err != nil {
		ev.skip(def, err.Error())
		return
	}
	ev.observeSim(sim)
	if sim >= def.EmbeddingThreshold {
		ev.trigger(def)
	}
}

// #endregion centroid-path

// #region keyword-path

// evaluateKeywordDriven handles keyword and hybrid attractors. Lower
// intensity demands stronger keyword evidence; for hybrid attractors a
// similarity above the embedding threshold triggers independently.
func (ev *evaluation) evaluateKeywordDriven(def attractor.Definition, intensity float32) {
	score, matched := keyword.Score(ev.ctx.Text, def.Keywords, ev.exempted)

	scaled := def.KeywordThreshold / max32(intensity, intensityEpsilon)
	fired := score > 0 &&
		float32(score) >= def.KeywordThreshold &&
		float32(score) >= scaled

	if ev.ctx.UseEmbeddings && def.HasCentroid() {
		if ev.embed == nil {
			ev.skip(def, "no embedding supplied, keyword signal only")
		} else if sim, err := vectors.Cosine(ev.embed, def.Centroid); err != nil {
			ev.skip(def, err.Error())
		} else {
			ev.observeSim(sim)
			if sim >= def.EmbeddingThreshold {
				fired = true
			}
		}
	}

	if !fired {
		return
	}

	ev.trigger(def)
	if def.SourceSet == attractor.SetSecondary {
		ev.combined += float32(score) * ev.ctx.WeightSecondary
	} else {
		ev.combined += float32(score)
	}
	for _, m := range matched {
		ev.flagged[m] = true
	}
}

// #endregion keyword-path

// #region helpers

func (ev *evaluation) trigger(def attractor.Definition) {
	ev.triggered = append(ev.triggered, string(def.SourceSet)+":"+def.ID)
}

func (ev *evaluation) observeSim(sim float32) {
	if !ev.simComputed || sim > ev.maxSim {
		ev.maxSim = sim
		ev.simComputed = true
	}
}

func (ev *evaluation) skip(def attractor.Definition, reason string) {
	log.Printf("[DETECT] skip %s:%s: %s", def.SourceSet, def.ID, reason)
	ev.skipped = append(ev.skipped, Skip{
		AttractorID: def.ID,
		Set:         def.SourceSet,
		Reason:      reason,
	})
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// #endregion helpers
