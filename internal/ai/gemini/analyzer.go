package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/praxisapp/praxis-backend/internal/model"
	"github.com/praxisapp/praxis-backend/internal/util"
)

//go:embed prompts/analyze_media.md
var analyzePromptTemplate string

const defaultMaxLogLength = 200

// mediaGenerator is the slice of Client the analyzer needs.
type mediaGenerator interface {
	GenerateFromMedia(ctx context.Context, data []byte, mimeType, prompt string, kind model.MediaType) (string, error)
}

// imageMIMETypes is the allow-list for image uploads. Video accepts any
// video/* container type.
var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// AllowedImageMIME reports whether the MIME type is accepted for image
// uploads.
func AllowedImageMIME(mimeType string) bool {
	return imageMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// Analyzer extracts skills from uploaded media through Gemini.
type Analyzer struct {
	generator mediaGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewAnalyzer creates an Analyzer backed by the given generator.
func NewAnalyzer(generator mediaGenerator, logger *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// AnalyzeMedia stages the media with Gemini, requests the structured skill
// analysis, and parses the reply.
func (a *Analyzer) AnalyzeMedia(ctx context.Context, data []byte, mimeType string, kind model.MediaType) (*model.Analysis, []model.SkillDescriptor, error) {
	if len(data) == 0 {
		return nil, nil, errors.New("media bytes must not be empty")
	}

	switch kind {
	case model.MediaTypeImage:
		if !AllowedImageMIME(mimeType) {
			return nil, nil, fmt.Errorf("image mime type %q: %w", mimeType, model.ErrUnsupportedMediaType)
		}
	case model.MediaTypeVideo:
		if !strings.HasPrefix(strings.ToLower(mimeType), "video/") {
			return nil, nil, fmt.Errorf("video mime type %q: %w", mimeType, model.ErrUnsupportedMediaType)
		}
	default:
		return nil, nil, fmt.Errorf("unknown media kind %q", kind)
	}

	prompt := strings.ReplaceAll(analyzePromptTemplate, "{{MEDIA_KIND}}", string(kind))

	a.logger.Debug("gemini analyze media request",
		zap.String("media_kind", string(kind)),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(data)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateFromMedia(ctx, data, mimeType, prompt, kind)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Debug("gemini analyze media response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseAnalysis(raw, kind)
}
