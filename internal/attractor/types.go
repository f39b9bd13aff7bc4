package attractor

// #region source-set

// SourceSet tags which collection an attractor belongs to.
type SourceSet string

const (
	SetPrimary   SourceSet = "primary"
	SetSecondary SourceSet = "secondary"
)

// #endregion source-set

// #region kind

// Kind describes which signals may drive a match for an attractor.
type Kind string

const (
	KindKeyword  Kind = "keyword"
	KindCentroid Kind = "centroid"
	KindHybrid   Kind = "hybrid"
)

// #endregion kind

// #region definition

// DefaultEmbeddingThreshold is used when a bundle omits an embedding threshold.
const DefaultEmbeddingThreshold float32 = 0.70

// Definition is a single attractor loaded from a bundle.
// Read-only after load; a config refresh replaces the whole set.
type Definition struct {
	ID                 string
	Rank               int // 0 = highest priority within its set
	SourceSet          SourceSet
	Kind               Kind
	Keywords           []string // normalized (lowercase), empty for centroid kind
	Centroid           []float32
	KeywordThreshold   float32
	EmbeddingThreshold float32
}

// HasCentroid reports whether a centroid vector is present.
func (d Definition) HasCentroid() bool {
	return len(d.Centroid) > 0
}

// #endregion definition

// #region set

// Set is an ordered collection of definitions sharing one SourceSet tag.
type Set struct {
	Source SourceSet
	defs   []Definition // sorted by ascending rank
}

// Ordered returns the definitions sorted by ascending rank.
// The returned slice must not be mutated.
func (s *Set) Ordered() []Definition {
	return s.defs
}

// Len returns the number of definitions in the set.
func (s *Set) Len() int {
	return len(s.defs)
}

// #endregion set

// #region summary

// Summary is a read-only view of one definition for introspection.
type Summary struct {
	ID                 string  `json:"id"`
	Rank               int     `json:"rank"`
	Kind               Kind    `json:"kind"`
	KeywordCount       int     `json:"keyword_count"`
	CentroidDim        int     `json:"centroid_dim"`
	KeywordThreshold   float32 `json:"keyword_threshold"`
	EmbeddingThreshold float32 `json:"embedding_threshold"`
}

// Summaries returns ordered summaries for every definition in the set.
func (s *Set) Summaries() []Summary {
	out := make([]Summary, len(s.defs))
	for i, d := range s.defs {
		out[i] = Summary{
			ID:                 d.ID,
			Rank:               d.Rank,
			Kind:               d.Kind,
			KeywordCount:       len(d.Keywords),
			CentroidDim:        len(d.Centroid),
			KeywordThreshold:   d.KeywordThreshold,
			EmbeddingThreshold: d.EmbeddingThreshold,
		}
	}
	return out
}

// #endregion summary
