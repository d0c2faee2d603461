package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/envutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// Client is the slice of the OpenAI API the backend uses: plain chat completions.
type Client interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("OPENAI_API_KEY", ""),
		Model:       envutil.String("OPENAI_MODEL", goopenai.GPT4oMini),
		BaseURL:     envutil.String("OPENAI_BASE_URL", ""),
		Timeout:     envutil.Duration("OPENAI_TIMEOUT", 30*time.Second),
		MaxTokens:   envutil.Int("OPENAI_MAX_TOKENS", 1200),
		Temperature: float32(envutil.Float("OPENAI_TEMPERATURE", 0.4)),
	}
}

type client struct {
	api *goopenai.Client
	cfg Config
	log *logger.Logger
}

// New returns nil, nil when no API key is configured so callers can fall back to templates.
func New(cfg Config, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("openai: logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}
	if cfg.Model == "" {
		cfg.Model = goopenai.GPT4oMini
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &client{
		api: goopenai.NewClientWithConfig(apiCfg),
		cfg: cfg,
		log: log.With("client", "OpenAI", "model", cfg.Model),
	}, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	msgs := make([]goopenai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: user})

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			c.log.Warn("openai request rejected", "status", apiErr.HTTPStatusCode, "code", apiErr.Code)
		}
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices")
	}
	c.log.Debug("openai completion",
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
