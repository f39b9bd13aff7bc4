package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kereva-dev/attractor/internal/attractor"
	"github.com/kereva-dev/attractor/internal/detect"
	"github.com/kereva-dev/attractor/internal/steer"
)

// #region fixtures

const secondaryKeywords = `
hedging:
  rank: 0
  kind: keyword
  keywords: [complex, valid, perspectives, sides, depends, context]
  keyword_threshold: 3
`

const primaryKeywords = `
overused_vocab:
  rank: 1
  kind: keyword
  keywords: [tapestry, delve, kaleidoscope]
  keyword_threshold: 2
`

const primaryCentroids = `
semantic_core:
  rank: 0
  vector: [1.0, 0.0, 0.0]
`

func writeBundle(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := Load(attractor.BundlePaths{
		Primary: attractor.Bundle{
			CentroidFile: writeBundle(t, "primary_centroids.yaml", primaryCentroids),
			KeywordFile:  writeBundle(t, "primary_keywords.yaml", primaryKeywords),
		},
		Secondary: attractor.Bundle{
			KeywordFile: writeBundle(t, "secondary_keywords.yaml", secondaryKeywords),
		},
	}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f *fixedEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vec, f.err
}

// #endregion fixtures

func TestLoadRejectsBadBundle(t *testing.T) {
	_, err := Load(attractor.BundlePaths{})
	if err == nil {
		t.Fatal("expected load failure for empty bundle paths")
	}
	var cfgErr *attractor.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
}

func TestDetectHedgingEndToEnd(t *testing.T) {
	eng := loadTestEngine(t)

	res := eng.Detect(context.Background(), detect.NewContext(
		"This is a complex issue with valid perspectives on both sides and it depends on context"))

	if !res.IsAttracted {
		t.Fatal("expected hedging text to be flagged")
	}
	if res.TriggeredAttractors[0] != "secondary:hedging" {
		t.Fatalf("unexpected triggers: %v", res.TriggeredAttractors)
	}
}

func TestDetectUsesEmbedderForCentroids(t *testing.T) {
	eng := loadTestEngine(t, WithEmbedder(&fixedEmbedder{vec: []float32{0.95, 0.05, 0}}))

	dctx := detect.NewContext("bland text that matches no keywords")
	dctx.UseEmbeddings = true
	res := eng.Detect(context.Background(), dctx)

	if !res.IsAttracted {
		t.Fatal("expected centroid attractor to trigger via embedder")
	}
	if res.TriggeredAttractors[0] != "primary:semantic_core" {
		t.Fatalf("unexpected triggers: %v", res.TriggeredAttractors)
	}
	if res.KeywordScore != 0 {
		t.Errorf("centroid trigger must not add keyword score, got %.1f", res.KeywordScore)
	}
}

func TestEmbedderFailureDegradesToKeywordOnly(t *testing.T) {
	eng := loadTestEngine(t, WithEmbedder(&fixedEmbedder{err: errors.New("service down")}))

	dctx := detect.NewContext("we delve into a tapestry")
	dctx.UseEmbeddings = true
	res := eng.Detect(context.Background(), dctx)

	// Keyword path still works; the centroid attractor is recorded skipped.
	if !res.IsAttracted {
		t.Fatal("keyword evaluation must survive an embedding outage")
	}
	if len(res.Skipped) == 0 {
		t.Fatal("expected the centroid attractor to be recorded as skipped")
	}
}

func TestSteerEndToEnd(t *testing.T) {
	eng := loadTestEngine(t)

	responses := []string{
		"we delve into a rich tapestry of meaning",
		"a plain and direct answer",
	}
	calls := 0
	gen := steer.GeneratorFunc(func(_ context.Context, _ string) (string, error) {
		text := responses[calls]
		calls++
		return text, nil
	})

	out, err := eng.Steer(context.Background(), gen, "explain the plan", detect.NewContext(""), 3)
	if err != nil {
		t.Fatal(err)
	}
	if out.Attempts != 2 {
		t.Fatalf("expected clean result on attempt 2, got %d", out.Attempts)
	}
	if out.Text != responses[1] {
		t.Fatalf("unexpected accepted text %q", out.Text)
	}
	if out.Result.IsAttracted {
		t.Fatal("accepted text must be clean")
	}
}

func TestListAttractorsOrderedSummaries(t *testing.T) {
	eng := loadTestEngine(t)

	primary := eng.ListAttractors(attractor.SetPrimary)
	if len(primary) != 2 {
		t.Fatalf("expected 2 primary summaries, got %d", len(primary))
	}
	if primary[0].ID != "semantic_core" || primary[0].Rank != 0 {
		t.Fatalf("expected semantic_core first, got %+v", primary[0])
	}
	if primary[1].ID != "overused_vocab" {
		t.Fatalf("expected overused_vocab second, got %+v", primary[1])
	}

	secondary := eng.ListAttractors(attractor.SetSecondary)
	if len(secondary) != 1 || secondary[0].ID != "hedging" {
		t.Fatalf("unexpected secondary summaries: %+v", secondary)
	}
}
