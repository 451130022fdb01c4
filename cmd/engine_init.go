package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fieldserve/nameplate-cli/internal/catalog"
	"github.com/fieldserve/nameplate-cli/internal/config"
	"github.com/fieldserve/nameplate-cli/internal/engine"
	"github.com/fieldserve/nameplate-cli/internal/recognizer"
	"github.com/fieldserve/nameplate-cli/internal/store"
	"github.com/fieldserve/nameplate-cli/pkg/anthropic"
	"github.com/fieldserve/nameplate-cli/pkg/cloudvision"
)

// env bundles everything a command needs to run recognitions.
type env struct {
	Catalog      *catalog.Catalog
	Orchestrator *engine.Orchestrator
	History      store.Store // nil when recording is not configured

	// RequestTimeout caps one whole recognition. Stages carry their own
	// timeout inside the orchestrator; this is the outer bound across all
	// of them.
	RequestTimeout time.Duration
}

func (e *env) Close() {
	if e.History != nil {
		_ = e.History.Close()
	}
}

// initEngine loads the catalog and assembles the waterfall from whichever
// stages are configured, cheapest-to-escalate first.
func initEngine(ctx context.Context) (*env, error) {
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("entries", cat.Len()),
		zap.Int("patterns", len(cat.Patterns())),
	)

	matcher := engine.NewMatcher(cat, engine.MatchPolicy{
		MaxEditDistance:    cfg.Engine.MaxEditDistance,
		MinUnmatchedLength: cfg.Engine.MinUnmatchedLength,
	})

	var stages []engine.Stage
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		stages = append(stages, recognizer.NewPremium(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens))
	}
	if cfg.Vision.Key != "" {
		client := cloudvision.NewClient(cfg.Vision.Key, cloudvision.WithBaseURL(cfg.Vision.BaseURL))
		stages = append(stages, recognizer.NewEconomy(client))
	}
	if cfg.OCR.Enabled {
		stages = append(stages, recognizer.NewLocal(cfg.OCR.Language))
	}
	if len(stages) == 0 {
		return nil, eris.New("no recognizer stages configured: set anthropic.key, vision.key, or ocr.enabled")
	}

	stageTimeout := time.Duration(cfg.Engine.StageTimeoutSecs) * time.Second
	e := &env{
		Catalog:        cat,
		Orchestrator:   engine.NewOrchestrator(matcher, cat.Patterns(), stageTimeout, stages...),
		RequestTimeout: stageTimeout * time.Duration(len(stages)),
	}

	e.History, err = openHistory(ctx)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// recognize runs one image through the waterfall under the outer request
// timeout and records the outcome when history is enabled.
func (e *env) recognize(ctx context.Context, image []byte) (*engine.RankedResult, error) {
	if e.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := e.Orchestrator.Identify(ctx, image)
	if err != nil {
		return nil, err
	}

	if e.History != nil {
		rec := &store.ScanRecord{
			ID:         uuid.New().String(),
			Diagnostic: result.Diagnostic,
			Candidates: len(result.Candidates),
			Duration:   time.Since(start),
		}
		if !result.Empty() {
			top := result.Candidates[0]
			rec.Source = string(result.Source)
			rec.TopCode = top.NormalizedCode
			rec.MatchKind = string(top.Kind)
			rec.Tier = top.Tier.String()
		}
		if err := e.History.SaveScan(ctx, rec); err != nil {
			zap.L().Warn("record scan failed", zap.Error(err))
		}
	}

	return result, nil
}
