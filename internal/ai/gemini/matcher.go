package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/model"
	"github.com/praxisapp/praxis-backend/internal/util"
)

//go:embed prompts/match_jobs.md
var matchPromptTemplate string

// contentGenerator is the slice of Client the matcher needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Matcher requests job suggestions from Gemini for a normalized skill set.
type Matcher struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewMatcher creates a Matcher backed by the given generator.
func NewMatcher(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// MatchJobs asks Gemini for exactly three job suggestions based on the skill
// names and analysis summary.
func (m *Matcher) MatchJobs(ctx context.Context, skills []model.Skill, summary string) ([]model.Job, error) {
	names := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill.Name != "" {
			names = append(names, skill.Name)
		}
	}

	prompt := buildMatchPrompt(names, summary)

	m.logger.Debug("gemini match jobs request",
		zap.Int("skill_count", len(names)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini match jobs response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, m.maxLogLen)),
	)

	return parseJobs(raw)
}

func buildMatchPrompt(skillNames []string, summary string) string {
	skills := strings.Join(skillNames, ", ")
	if skills == "" {
		skills = "none listed"
	}
	if strings.TrimSpace(summary) == "" {
		summary = "no summary available"
	}

	prompt := strings.ReplaceAll(matchPromptTemplate, "{{SKILLS}}", skills)
	return strings.ReplaceAll(prompt, "{{SUMMARY}}", summary)
}
