package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/nameplate-cli/internal/catalog"
)

// NoTextDiagnostic is returned as the diagnostic when every stage's adapter
// itself failed and no recognizer produced any text.
const NoTextDiagnostic = "no text recognized"

// Stage is one recognizer in the waterfall. Implementations wrap a single
// back-end and must not return errors: failures surface inside the attempt.
type Stage interface {
	Source() SourceKind
	Recognize(ctx context.Context, image []byte) RecognitionAttempt
}

// Orchestrator runs recognizer stages in cost order, short-circuiting at the
// first stage whose attempt yields at least one accepted candidate.
type Orchestrator struct {
	stages       []Stage
	matcher      *Matcher
	patterns     []catalog.Pattern
	stageTimeout time.Duration
}

// NewOrchestrator builds an Orchestrator. Stages run in the order given,
// which callers arrange cheapest-to-escalate first: premium vision, economy
// vision, then local OCR. Each stage's adapter call is bounded by
// stageTimeout; a stage that exceeds it counts as failed and the waterfall
// advances. Zero leaves stages unbounded.
func NewOrchestrator(matcher *Matcher, patterns []catalog.Pattern, stageTimeout time.Duration, stages ...Stage) *Orchestrator {
	return &Orchestrator{
		stages:       stages,
		matcher:      matcher,
		patterns:     patterns,
		stageTimeout: stageTimeout,
	}
}

// Identify runs the waterfall over image. The returned result is never nil:
// when all stages exhaust without a candidate it is empty and carries the
// last non-empty diagnostic text (or NoTextDiagnostic when every adapter
// failed outright). The only error returned is ctx.Err() on cancellation;
// partial results are discarded, never returned.
func (o *Orchestrator) Identify(ctx context.Context, image []byte) (*RankedResult, error) {
	lastDiag := ""

	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attempt := o.runStage(ctx, stage, image)
		if !attempt.Succeeded {
			zap.L().Warn("recognizer stage failed",
				zap.String("source", string(attempt.Source)),
				zap.String("reason", attempt.ErrorReason),
			)
			continue
		}
		if attempt.RawText != "" {
			lastDiag = attempt.RawText
		}

		result := o.evaluate(attempt)
		result.Source = stage.Source()
		if !result.Empty() {
			zap.L().Info("waterfall matched",
				zap.String("source", string(result.Source)),
				zap.Int("candidates", len(result.Candidates)),
			)
			result.Diagnostic = attempt.RawText
			return result, nil
		}

		zap.L().Debug("stage produced no candidates, advancing",
			zap.String("source", string(attempt.Source)),
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lastDiag == "" {
		lastDiag = NoTextDiagnostic
	}
	return &RankedResult{Diagnostic: lastDiag}, nil
}

// runStage invokes one adapter under the per-stage deadline. The call runs
// in its own goroutine so an adapter that ignores its context still cannot
// stall the waterfall: on expiry the stage is reported failed and whatever
// the adapter eventually returns is discarded.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, image []byte) RecognitionAttempt {
	if o.stageTimeout <= 0 {
		return stage.Recognize(ctx, image)
	}

	sctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	done := make(chan RecognitionAttempt, 1)
	go func() {
		done <- stage.Recognize(sctx, image)
	}()

	select {
	case attempt := <-done:
		return attempt
	case <-sctx.Done():
		return FailedAttempt(stage.Source(), "stage timeout: "+sctx.Err().Error())
	}
}

// evaluate turns one successful attempt into a ranked candidate list. The
// structured path (premium stage) matches the guessed model code directly
// against the catalog, skipping pattern extraction; the text path runs
// normalize → extract → match → rank.
func (o *Orchestrator) evaluate(attempt RecognitionAttempt) *RankedResult {
	if attempt.Structured != nil {
		return &RankedResult{Candidates: o.matchStructured(attempt.Structured)}
	}

	normalized := NormalizeText(attempt.RawText)
	detected := Extract(normalized, o.patterns)
	return &RankedResult{Candidates: RankAndDedup(o.matcher.MatchAll(detected))}
}

// matchStructured resolves the backend's model guess. A catalog hit keeps
// its exact/fuzzy kind and tier; a miss is still emitted as an ai_structured
// candidate with the tier taken from the backend's self-reported confidence.
func (o *Orchestrator) matchStructured(guess *StructuredGuess) []CandidateMatch {
	code := catalog.NormalizeCode(guess.Model)
	if code == "" {
		return nil
	}

	if cand, ok := o.matcher.Match(guess.Model); ok && cand.Kind != MatchUnmatched {
		return []CandidateMatch{cand}
	}

	return []CandidateMatch{{
		DetectedSubstring: guess.Model,
		NormalizedCode:    code,
		Tier:              TierFromLabel(guess.Confidence),
		Kind:              MatchAIStructured,
	}}
}
