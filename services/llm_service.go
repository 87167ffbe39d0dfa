package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Mageswarikaruppasamy/MultiAgent-Healthcare/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	ErrLLMDisabled      = errors.New("llm api key not configured")
	ErrEmptyLLMResponse = errors.New("empty response from llm")
)

type GenerateOptions struct {
	Model           string // empty uses the generator default
	Temperature     *float32
	MaxOutputTokens int32
	JSON            bool
}

// TextGenerator is the single seam between the features and the model
// provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // tests point this at httptest
	HTTPClient *http.Client
	Timeout    time.Duration // per attempt
	Retry      utils.RetryConfig
}

type GeminiService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retry   utils.RetryConfig
	log     *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, ErrLLMDisabled
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiService{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		log:     log,
	}, nil
}

func (g *GeminiService) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = g.model
	}

	gc := &genai.GenerateContentConfig{
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	if opts.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	return utils.WithRetry(ctx, g.retry, g.log, "gemini "+model, func(ctx context.Context) (string, error) {
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
		if err != nil {
			if !isRetryableLLMError(err) {
				return "", utils.Permanent(fmt.Errorf("gemini generate: %w", err))
			}
			return "", fmt.Errorf("gemini generate: %w", err)
		}

		text := strings.TrimSpace(resp.Text())
		if text == "" {
			return "", ErrEmptyLLMResponse
		}
		return text, nil
	})
}

// isRetryableLLMError retries throttling, server errors and transport
// failures; other 4xx responses are final.
func isRetryableLLMError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
