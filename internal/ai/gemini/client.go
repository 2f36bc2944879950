// Package gemini implements media analysis and job matching on top of the
// Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/praxisapp/praxis-backend/internal/model"
	"github.com/praxisapp/praxis-backend/internal/util"
)

const (
	defaultModel           = "gemini-2.5-flash"
	defaultPollInterval    = 2 * time.Second
	defaultMaxPollAttempts = 150
)

// Config holds the Gemini provider settings.
type Config struct {
	APIKey string
	Model  string
	// PollInterval is the delay between video readiness checks.
	PollInterval time.Duration
	// MaxPollAttempts bounds the readiness wait; on expiry the media is
	// treated as unprocessable.
	MaxPollAttempts int
	// MaxLogLength caps prompt/response previews in debug logs.
	MaxLogLength int
}

// Client wraps the GenAI client for prompt and media based generation.
type Client struct {
	client          *genai.Client
	modelName       string
	pollInterval    time.Duration
	maxPollAttempts int
	logger          *zap.Logger
}

// NewClient creates a Client configured for the Gemini API backend.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultModel
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	maxPollAttempts := cfg.MaxPollAttempts
	if maxPollAttempts <= 0 {
		maxPollAttempts = defaultMaxPollAttempts
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		client:          client,
		modelName:       modelName,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		logger:          logger,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

// GenerateContent sends the prompt to Gemini and returns the combined textual
// response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	return c.generate(ctx, genai.Text(prompt))
}

// GenerateFromMedia stages the media bytes with the provider, waits until the
// staged file is ready, and generates content from the file plus the prompt.
// The on-disk scratch copy used for staging is removed on every exit path.
func (c *Client) GenerateFromMedia(ctx context.Context, data []byte, mimeType, prompt string, kind model.MediaType) (string, error) {
	if c == nil || c.client == nil {
		return "", errors.New("gemini client is not initialized")
	}

	file, err := c.stage(ctx, data, mimeType)
	if err != nil {
		return "", err
	}

	if kind == model.MediaTypeVideo {
		file, err = c.awaitActive(ctx, file)
		if err != nil {
			return "", err
		}
	}

	parts := []*genai.Part{
		genai.NewPartFromURI(file.URI, file.MIMEType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	return c.generate(ctx, contents)
}

// stage uploads the media to the provider's file storage via a scratch file.
func (c *Client) stage(ctx context.Context, data []byte, mimeType string) (*genai.File, error) {
	scratch, err := os.CreateTemp("", "praxis-media-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	defer os.Remove(scratch.Name())

	if _, err := scratch.Write(data); err != nil {
		scratch.Close()
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	if err := scratch.Close(); err != nil {
		return nil, fmt.Errorf("close scratch file: %w", err)
	}

	file, err := c.client.Files.UploadFromPath(ctx, scratch.Name(), &genai.UploadFileConfig{
		MIMEType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	c.logger.Debug("staged media with provider",
		zap.String("file", file.Name),
		zap.String("mime_type", mimeType),
		zap.Int("size_bytes", len(data)),
	)

	return file, nil
}

// awaitActive polls the staged file until the provider reports it ready.
func (c *Client) awaitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	for attempt := 0; attempt < c.maxPollAttempts; attempt++ {
		switch file.State {
		case genai.FileStateActive:
			return file, nil
		case genai.FileStateFailed:
			return nil, fmt.Errorf("provider failed to process media: %w", model.ErrUnprocessableMedia)
		}

		if err := util.WaitFor(ctx, c.pollInterval); err != nil {
			return nil, fmt.Errorf("waiting for media processing: %w", err)
		}

		refreshed, err := c.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("poll staged file: %w", err)
		}
		file = refreshed

		c.logger.Debug("polled staged file",
			zap.String("file", file.Name),
			zap.String("state", string(file.State)),
			zap.Int("attempt", attempt+1),
		)
	}

	return nil, fmt.Errorf("media not ready after %d attempts: %w", c.maxPollAttempts, model.ErrUnprocessableMedia)
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}
