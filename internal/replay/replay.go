// Package replay re-runs recorded detection cases against a loaded
// attractor store. Embeddings come from the fixture itself, so a replay
// is fully deterministic and needs no live collaborators.
package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kereva-dev/attractor/internal/detect"
)

// #endregion imports

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Context     FixtureKnobs  `json:"context"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureKnobs mirrors the detection context knobs with JSON tags.
type FixtureKnobs struct {
	ExemptedKeywords []string `json:"exempted_keywords,omitempty"`
	Intensity        *float32 `json:"intensity,omitempty"`
	WeightSecondary  *float32 `json:"weight_secondary,omitempty"`
	UseEmbeddings    bool     `json:"use_embeddings,omitempty"`
}

// FixtureCase is one recorded text plus the expected verdict.
type FixtureCase struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Embedding []float32   `json:"embedding,omitempty"`
	Expect    Expectation `json:"expect"`
}

// Expectation describes what the detector must report for a case.
type Expectation struct {
	IsAttracted bool     `json:"is_attracted"`
	Triggered   []string `json:"triggered,omitempty"` // exact prefixed ids, order-sensitive
}

// #endregion fixture-types

// #region load

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("fixture %s has no cases", path)
	}
	return &f, nil
}

// #endregion load

// #region run

// CaseResult is the outcome of replaying one case.
type CaseResult struct {
	ID     string
	Passed bool
	Reason string
	Result detect.Result
}

// Run replays every case through the detector and reports mismatches.
func Run(d *detect.Detector, f *Fixture) []CaseResult {
	results := make([]CaseResult, 0, len(f.Cases))
	for _, c := range f.Cases {
		dctx := buildContext(f.Context, c.Text)
		res := d.Evaluate(dctx, c.Embedding)
		results = append(results, check(c, res))
	}
	return results
}

func buildContext(knobs FixtureKnobs, text string) detect.Context {
	dctx := detect.NewContext(text)
	dctx.ExemptedKeywords = knobs.ExemptedKeywords
	dctx.UseEmbeddings = knobs.UseEmbeddings
	if knobs.Intensity != nil {
		dctx.Intensity = *knobs.Intensity
	}
	if knobs.WeightSecondary != nil {
		dctx.WeightSecondary = *knobs.WeightSecondary
	}
	return dctx
}

func check(c FixtureCase, res detect.Result) CaseResult {
	out := CaseResult{ID: c.ID, Result: res}

	if res.IsAttracted != c.Expect.IsAttracted {
		out.Reason = fmt.Sprintf("is_attracted=%v, expected %v", res.IsAttracted, c.Expect.IsAttracted)
		return out
	}
	if c.Expect.Triggered != nil {
		if len(res.TriggeredAttractors) != len(c.Expect.Triggered) {
			out.Reason = fmt.Sprintf("triggered %v, expected %v", res.TriggeredAttractors, c.Expect.Triggered)
			return out
		}
		for i, want := range c.Expect.Triggered {
			if res.TriggeredAttractors[i] != want {
				out.Reason = fmt.Sprintf("triggered %v, expected %v", res.TriggeredAttractors, c.Expect.Triggered)
				return out
			}
		}
	}

	out.Passed = true
	out.Reason = "ok"
	return out
}

// #endregion run
