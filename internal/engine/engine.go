// Package engine wires the attractor store, combiner, and steering loop
// into the runtime surface consumed by callers.
package engine

// #region imports
import (
	"context"
	"log"

	"github.com/kereva-dev/attractor/internal/attractor"
	"github.com/kereva-dev/attractor/internal/detect"
	"github.com/kereva-dev/attractor/internal/steer"
)

// #endregion imports

// #region embedder

// Embedder abstracts the external embedding service. A failure degrades
// the call to keyword-only evaluation; it is never fatal.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// #endregion embedder

// #region engine

// Engine is an explicitly constructed detection/steering instance. No
// hidden statics: all state lives here, and everything behind the store
// pointer is immutable after Load, so instances may share one store.
type Engine struct {
	store    *attractor.Store
	detector *detect.Detector
	steerer  *steer.Steerer
	embedder Embedder
}

// Option configures optional collaborators at construction time.
type Option func(*Engine)

// WithEmbedder attaches an embedding service. Without one, centroid and
// hybrid embedding checks are skipped and recorded as skipped.
func WithEmbedder(e Embedder) Option {
	return func(eng *Engine) { eng.embedder = e }
}

// Load reads the attractor bundles and constructs an engine.
func Load(paths attractor.BundlePaths, opts ...Option) (*Engine, error) {
	store, err := attractor.Load(paths)
	if err != nil {
		return nil, err
	}
	return New(store, opts...), nil
}

// New constructs an engine over an already-loaded store.
func New(store *attractor.Store, opts ...Option) *Engine {
	eng := &Engine{
		store:    store,
		detector: detect.New(store),
	}
	for _, opt := range opts {
		opt(eng)
	}
	eng.steerer = steer.New(evaluatorAdapter{eng})
	return eng
}

// #endregion engine

// #region detect

// Detect evaluates one text against both attractor sets. When the context
// asks for embeddings and an embedder is attached, the text is embedded
// once per call; an embedding failure logs a warning and degrades to
// keyword-only evaluation.
func (e *Engine) Detect(ctx context.Context, dctx detect.Context) detect.Result {
	var embedding []float32
	if dctx.UseEmbeddings && e.embedder != nil {
		emb, err := e.embedder.Embed(ctx, dctx.Text)
		if err != nil {
			log.Printf("[ENGINE] embedding unavailable, keyword-only evaluation: %v", err)
		} else {
			embedding = emb
		}
	}
	return e.detector.Evaluate(dctx, embedding)
}

// evaluatorAdapter exposes Detect under the steer.Evaluator capability.
type evaluatorAdapter struct {
	eng *Engine
}

func (a evaluatorAdapter) Evaluate(ctx context.Context, dctx detect.Context) detect.Result {
	return a.eng.Detect(ctx, dctx)
}

// #endregion detect

// #region steer

// Steer generates up to maxAttempts candidates for prompt and returns the
// first clean one, or the least-bad candidate once the budget is spent.
// A generator error aborts the call.
func (e *Engine) Steer(ctx context.Context, gen steer.Generator, prompt string, dctx detect.Context, maxAttempts int) (steer.Outcome, error) {
	return e.steerer.Steer(ctx, gen, prompt, dctx, maxAttempts)
}

// #endregion steer

// #region list-attractors

// ListAttractors returns read-only ordered summaries for one set.
func (e *Engine) ListAttractors(source attractor.SourceSet) []attractor.Summary {
	return e.store.Get(source).Summaries()
}

// #endregion list-attractors
