// Package pipeline runs one upload through analysis, normalization and job
// matching, recording the outcome in the registry.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/ai"
	"github.com/praxisapp/praxis-backend/internal/model"
	"github.com/praxisapp/praxis-backend/internal/registry"
	"github.com/praxisapp/praxis-backend/internal/skills"
)

// Pipeline wires the analyzer, matcher and registry together. Whether the
// real Gemini implementations or the mock ones sit behind the interfaces is
// decided once at startup.
type Pipeline struct {
	analyzer ai.Analyzer
	matcher  ai.JobMatcher
	registry *registry.Registry
	logger   *zap.Logger
}

// New creates a Pipeline.
func New(analyzer ai.Analyzer, matcher ai.JobMatcher, reg *registry.Registry, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		analyzer: analyzer,
		matcher:  matcher,
		registry: reg,
		logger:   logger,
	}
}

// Process runs the full pipeline for an already-created registry record. On
// any stage failure the record is marked failed before the error is returned;
// on success the record is completed with all three artifacts at once.
func (p *Pipeline) Process(ctx context.Context, id string, data []byte, mimeType string, kind model.MediaType) error {
	analysis, descriptors, err := p.analyzer.AnalyzeMedia(ctx, data, mimeType, kind)
	if err != nil {
		return p.fail(id, fmt.Errorf("analyzing media: %w", err))
	}

	normalized := skills.Normalize(descriptors)

	p.logger.Debug("normalized skills",
		zap.String("processing_id", id),
		zap.Int("descriptor_count", len(descriptors)),
		zap.Int("skill_count", len(normalized)),
	)

	jobs, err := p.matcher.MatchJobs(ctx, normalized, analysis.Summary)
	if err != nil {
		return p.fail(id, fmt.Errorf("matching jobs: %w", err))
	}

	if err := p.registry.Complete(id, analysis, normalized, jobs); err != nil {
		return p.fail(id, fmt.Errorf("completing record: %w", err))
	}

	p.logger.Info("processing completed",
		zap.String("processing_id", id),
		zap.Int("skills", len(normalized)),
		zap.Int("jobs", len(jobs)),
	)

	return nil
}

func (p *Pipeline) fail(id string, err error) error {
	if failErr := p.registry.Fail(id); failErr != nil {
		p.logger.Warn("marking record failed",
			zap.String("processing_id", id),
			zap.Error(failErr),
		)
	}

	p.logger.Error("processing failed",
		zap.String("processing_id", id),
		zap.Error(err),
	)

	return err
}
