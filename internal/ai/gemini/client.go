package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	provider            = "gemini"
	defaultModel        = "gemini-2.5-flash"
	defaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 200
)

var waitFor = utils.WaitFor

// contentModel is the subset of *genai.Models used by the Generator.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options tunes a Generator. Zero values select the defaults.
type Options struct {
	Model string
	// Timeout bounds every single call to the API.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts for transient errors.
	// Zero keeps a single attempt per call.
	MaxRetries   int
	MaxLogLength int
	Temperature  *float32
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	models      contentModel
	model       string
	timeout     time.Duration
	maxRetries  int
	maxLogLen   int
	temperature *float32
	logger      *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey string, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
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

	return newGenerator(client.Models, opts, log), nil
}

func newGenerator(models contentModel, opts Options, log *zap.Logger) *Generator {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxLogLen := opts.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Generator{
		models:      models,
		model:       model,
		timeout:     timeout,
		maxRetries:  retries,
		maxLogLen:   maxLogLen,
		temperature: opts.Temperature,
		logger:      logger.WithCommonFields(log, provider, model),
	}
}

// GenerateContent sends the message with an optional system instruction and
// returns the concatenated text of the response.
func (g *Generator) GenerateContent(ctx context.Context, system, message string, maxOutputTokens int32) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
		Temperature:     g.temperature,
	}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.Int32("max_output_tokens", maxOutputTokens),
		zap.String("prompt_preview", utils.TruncateForLog(utils.OneLine(message), g.maxLogLen)),
	)

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		output, err := g.generateOnce(ctx, message, config)
		if err == nil {
			g.logger.Debug("gemini generate content response",
				zap.Int("attempt", attempt+1),
				zap.Int("response_length", utf8.RuneCountInString(output)),
				zap.String("response_preview", utils.TruncateForLog(utils.OneLine(output), g.maxLogLen)),
			)
			return output, nil
		}
		lastErr = err

		if attempt == g.maxRetries {
			break
		}

		delay, retry := retryDelay(err, attempt)
		if !retry || ctx.Err() != nil {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := waitFor(ctx, delay); err != nil {
			break
		}
	}

	return "", lastErr
}

func (g *Generator) generateOnce(ctx context.Context, message string, config *genai.GenerateContentConfig) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.models.GenerateContent(callCtx, g.model, genai.Text(message), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned no response")
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

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
