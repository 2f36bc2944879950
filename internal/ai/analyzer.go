// Package ai defines the provider-facing contracts of the pipeline. The real
// Gemini implementations live in the gemini subpackage; mock implementations
// here are selected at startup when no provider credential is configured.
package ai

import (
	"context"

	"github.com/praxisapp/praxis-backend/internal/model"
)

// Analyzer produces an analysis and a raw skill descriptor list from uploaded
// media bytes.
type Analyzer interface {
	AnalyzeMedia(ctx context.Context, data []byte, mimeType string, kind model.MediaType) (*model.Analysis, []model.SkillDescriptor, error)
}

// JobMatcher suggests jobs for a normalized skill set and analysis summary.
type JobMatcher interface {
	MatchJobs(ctx context.Context, skills []model.Skill, summary string) ([]model.Job, error)
}
