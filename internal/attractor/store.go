package attractor

// #region imports
import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// #endregion imports

// #region config-error

// ConfigError reports a malformed or mismatched attractor bundle.
// Fatal at load time; the engine never starts on a bad bundle.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

func configErrf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// #endregion config-error

// #region bundle-paths

// Bundle names the two files that make up one attractor set.
// Either path may be empty when no attractor in the set needs that file.
type Bundle struct {
	CentroidFile string
	KeywordFile  string
}

// BundlePaths names the bundles for both sets. An entirely empty secondary
// bundle yields an empty secondary set.
type BundlePaths struct {
	Primary   Bundle
	Secondary Bundle
}

// #endregion bundle-paths

// #region file-formats

// centroidEntry is one row of the centroid file: id → {rank, vector}.
type centroidEntry struct {
	Rank   int       `yaml:"rank"`
	Vector []float32 `yaml:"vector"`
}

// keywordEntry is one row of the keyword/threshold file.
type keywordEntry struct {
	Rank               int      `yaml:"rank"`
	Kind               string   `yaml:"kind"`
	Keywords           []string `yaml:"keywords"`
	KeywordThreshold   *float32 `yaml:"keyword_threshold"`
	EmbeddingThreshold *float32 `yaml:"embedding_threshold"`
}

// #endregion file-formats

// #region store

// Store holds both loaded attractor sets. Immutable after Load, so it is
// safe to share across concurrently running engine instances.
type Store struct {
	primary   *Set
	secondary *Set
}

// Load reads and validates both bundles.
func Load(paths BundlePaths) (*Store, error) {
	primary, err := loadSet(SetPrimary, paths.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := loadSet(SetSecondary, paths.Secondary)
	if err != nil {
		return nil, err
	}
	log.Printf("[STORE] loaded %d primary and %d secondary attractors",
		primary.Len(), secondary.Len())
	return &Store{primary: primary, secondary: secondary}, nil
}

// NewStore assembles a store from pre-built sets. A nil set is treated
// as empty. Used when definitions come from somewhere other than bundle
// files (tests, config refresh).
func NewStore(primary, secondary *Set) *Store {
	if primary == nil {
		primary = &Set{Source: SetPrimary}
	}
	if secondary == nil {
		secondary = &Set{Source: SetSecondary}
	}
	return &Store{primary: primary, secondary: secondary}
}

// Get returns the set with the given source tag.
func (s *Store) Get(source SourceSet) *Set {
	if source == SetSecondary {
		return s.secondary
	}
	return s.primary
}

// #endregion store

// #region load-set

func loadSet(source SourceSet, bundle Bundle) (*Set, error) {
	if bundle.CentroidFile == "" && bundle.KeywordFile == "" {
		if source == SetPrimary {
			return nil, configErrf("%s set: no bundle files given", source)
		}
		return &Set{Source: source}, nil
	}

	centroids, err := readCentroidFile(source, bundle.CentroidFile)
	if err != nil {
		return nil, err
	}
	keywords, err := readKeywordFile(source, bundle.KeywordFile)
	if err != nil {
		return nil, err
	}

	defs, err := mergeEntries(source, centroids, keywords)
	if err != nil {
		return nil, err
	}
	return NewSet(source, defs)
}

func readCentroidFile(source SourceSet, path string) (map[string]centroidEntry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configErrf("%s set: centroid file: %v", source, err)
	}
	var entries map[string]centroidEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, configErrf("%s set: centroid file %s: %v", source, path, err)
	}
	return entries, nil
}

func readKeywordFile(source SourceSet, path string) (map[string]keywordEntry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configErrf("%s set: keyword file: %v", source, err)
	}
	var entries map[string]keywordEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, configErrf("%s set: keyword file %s: %v", source, path, err)
	}
	return entries, nil
}

// #endregion load-set

// #region merge

// mergeEntries cross-checks the two files and builds definitions.
// An id present in one file but absent from the other is an error unless
// the attractor's kind makes the missing file irrelevant.
func mergeEntries(source SourceSet, centroids map[string]centroidEntry, keywords map[string]keywordEntry) ([]Definition, error) {
	var defs []Definition

	for id, kw := range keywords {
		kind, err := parseKind(source, id, kw.Kind)
		if err != nil {
			return nil, err
		}

		cent, hasCent := centroids[id]
		switch kind {
		case KindKeyword:
			if hasCent {
				return nil, configErrf("%s set: %s is keyword-kind but the centroid file defines a vector for it", source, id)
			}
		case KindCentroid, KindHybrid:
			if !hasCent {
				return nil, configErrf("%s set: %s is %s-kind but has no centroid entry", source, id, kind)
			}
			if cent.Rank != kw.Rank {
				return nil, configErrf("%s set: %s rank disagrees between files (%d vs %d)", source, id, cent.Rank, kw.Rank)
			}
		}
		if kind == KindCentroid && len(kw.Keywords) > 0 {
			return nil, configErrf("%s set: %s is centroid-kind but lists keywords", source, id)
		}

		kwThreshold, err := checkThreshold(source, id, "keyword_threshold", kw.KeywordThreshold, 0)
		if err != nil {
			return nil, err
		}
		embThreshold, err := checkThreshold(source, id, "embedding_threshold", kw.EmbeddingThreshold, DefaultEmbeddingThreshold)
		if err != nil {
			return nil, err
		}

		defs = append(defs, Definition{
			ID:                 id,
			Rank:               kw.Rank,
			SourceSet:          source,
			Kind:               kind,
			Keywords:           normalizeKeywords(kw.Keywords),
			Centroid:           cent.Vector,
			KeywordThreshold:   kwThreshold,
			EmbeddingThreshold: embThreshold,
		})
	}

	// Centroid-file ids with no keyword entry are pure centroid attractors.
	for id, cent := range centroids {
		if _, ok := keywords[id]; ok {
			continue
		}
		defs = append(defs, Definition{
			ID:                 id,
			Rank:               cent.Rank,
			SourceSet:          source,
			Kind:               KindCentroid,
			Centroid:           cent.Vector,
			EmbeddingThreshold: DefaultEmbeddingThreshold,
		})
	}

	if err := checkDimensions(source, defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func parseKind(source SourceSet, id, raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindKeyword:
		return KindKeyword, nil
	case KindCentroid:
		return KindCentroid, nil
	case KindHybrid:
		return KindHybrid, nil
	}
	return "", configErrf("%s set: %s has unknown kind %q", source, id, raw)
}

func checkThreshold(source SourceSet, id, name string, v *float32, fallback float32) (float32, error) {
	if v == nil {
		return fallback, nil
	}
	if *v < 0 {
		return 0, configErrf("%s set: %s has negative %s %.2f", source, id, name, *v)
	}
	return *v, nil
}

// checkDimensions requires every centroid in a set to share one dimension.
func checkDimensions(source SourceSet, defs []Definition) error {
	dim := 0
	for _, d := range defs {
		if !d.HasCentroid() {
			continue
		}
		if dim == 0 {
			dim = len(d.Centroid)
			continue
		}
		if len(d.Centroid) != dim {
			return configErrf("%s set: %s centroid has dimension %d, want %d", source, d.ID, len(d.Centroid), dim)
		}
	}
	return nil
}

func normalizeKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// #endregion merge

// #region new-set

// NewSet validates and orders a set of definitions. All definitions must
// carry the given source tag and ranks must be unique within the set.
func NewSet(source SourceSet, defs []Definition) (*Set, error) {
	if len(defs) == 0 {
		return nil, configErrf("%s set is empty", source)
	}

	ranks := make(map[int]string, len(defs))
	for _, d := range defs {
		if d.SourceSet != source {
			return nil, configErrf("%s set: %s carries source tag %q", source, d.ID, d.SourceSet)
		}
		if prev, ok := ranks[d.Rank]; ok {
			return nil, configErrf("%s set: %s and %s share rank %d", source, prev, d.ID, d.Rank)
		}
		ranks[d.Rank] = d.ID
	}

	sorted := make([]Definition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })

	return &Set{Source: source, defs: sorted}, nil
}

// #endregion new-set
