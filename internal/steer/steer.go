// Package steer drives a bounded regeneration loop around the detector.
package steer

// #region imports
import (
	"context"
	"fmt"
	"log"

	"github.com/kereva-dev/attractor/internal/detect"
)

// #endregion imports

// #region generator

// Generator is the external text-generation capability. Calls are opaque,
// potentially slow and non-deterministic; callers impose timeouts through
// ctx.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator capability.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// #endregion generator

// #region generation-error

// GenerationError wraps a generator failure. It aborts the whole steer
// call: the loop cannot tell a content problem from a service outage, so
// it never silently retries past one.
type GenerationError struct {
	Attempt int
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed on attempt %d: %v", e.Attempt, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// #endregion generation-error

// #region outcome

// Outcome is the final product of one steering call.
type Outcome struct {
	Text     string
	Result   detect.Result
	Attempts int
}

// #endregion outcome

// #region evaluator

// Evaluator is the detection capability the loop steers against. The
// engine implements it, resolving embeddings before combining signals.
type Evaluator interface {
	Evaluate(ctx context.Context, dctx detect.Context) detect.Result
}

// #endregion evaluator

// #region steerer

// Steerer re-generates flagged output against an Evaluator.
type Steerer struct {
	eval Evaluator
}

// New creates a Steerer over an evaluator.
func New(eval Evaluator) *Steerer {
	return &Steerer{eval: eval}
}

// #endregion steerer

// #region steer

// Steer generates up to maxAttempts candidates for prompt, evaluating each
// with dctx as the detection template. The first unflagged candidate is
// returned immediately. When the budget runs out, the attracted candidate
// with the lowest combined score wins, ties to the earliest attempt. Note
// that exhaustion can return text that still matches a pattern; callers
// that cannot accept that must check Outcome.Result themselves.
func (s *Steerer) Steer(ctx context.Context, gen Generator, prompt string, dctx detect.Context, maxAttempts int) (Outcome, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	type candidate struct {
		text   string
		result detect.Result
	}
	var recorded []candidate

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := gen.Generate(ctx, prompt)
		if err != nil {
			return Outcome{}, &GenerationError{Attempt: attempt, Err: err}
		}

		dctx.Text = text
		result := s.eval.Evaluate(ctx, dctx)

		if !result.IsAttracted {
			log.Printf("[STEER] attempt %d/%d clean", attempt, maxAttempts)
			return Outcome{Text: text, Result: result, Attempts: attempt}, nil
		}

		log.Printf("[STEER] attempt %d/%d attracted: score=%.2f triggered=%v",
			attempt, maxAttempts, result.KeywordScore, result.TriggeredAttractors)
		recorded = append(recorded, candidate{text: text, result: result})
	}

	// Budget exhausted: accept the least-bad candidate.
	best := 0
	for i := 1; i < len(recorded); i++ {
		if recorded[i].result.KeywordScore < recorded[best].result.KeywordScore {
			best = i
		}
	}
	log.Printf("[STEER] budget exhausted after %d attempts, accepting attempt %d (score=%.2f)",
		maxAttempts, best+1, recorded[best].result.KeywordScore)

	return Outcome{
		Text:     recorded[best].text,
		Result:   recorded[best].result,
		Attempts: maxAttempts,
	}, nil
}

// #endregion steer
