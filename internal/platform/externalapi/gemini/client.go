// Package gemini scores market sentiment with the Google Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	sentimentusecase "stock_watchlist/internal/feature/sentiment/usecase"
	"stock_watchlist/internal/platform/config"
)

const (
	DefaultModel = "gemini-2.5-flash"
	providerName = "gemini"
)

// ErrNotConfigured is returned by NewClient when no API key is set.
var ErrNotConfigured = errors.New("gemini api key is not configured")

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

var _ sentimentusecase.Provider = (*Client)(nil)

// NewClient creates a Gemini API client authenticated with cfg.APIKey.
func NewClient(ctx context.Context, cfg config.Gemini) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	return NewClientWithConfig(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}, cfg.Model, cfg.Timeout)
}

// NewClientWithConfig allows a custom genai configuration, e.g. a different base URL in tests.
func NewClientWithConfig(ctx context.Context, cc *genai.ClientConfig, model string, timeout time.Duration) (*Client, error) {
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{client: client, model: model, timeout: timeout}, nil
}

func (c *Client) Name() string {
	return providerName
}

// reply is the JSON object the model is asked to return.
type reply struct {
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

var replySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":   {Type: genai.TypeInteger, Minimum: genai.Ptr(1.0), Maximum: genai.Ptr(100.0)},
		"summary": {Type: genai.TypeString},
	},
	Required: []string{"score", "summary"},
}

// Analyze asks the model for a 1-100 sentiment score and a short summary.
func (c *Client) Analyze(ctx context.Context, in sentimentusecase.Input) (sentimentusecase.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(buildPrompt(in)), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
		ResponseSchema:   replySchema,
	})
	if err != nil {
		return sentimentusecase.Result{}, fmt.Errorf("gemini API request failed: %w", err)
	}

	r, err := parseReply(resp.Text())
	if err != nil {
		return sentimentusecase.Result{}, err
	}
	return sentimentusecase.Result{Score: r.Score, Summary: r.Summary, Source: providerName}, nil
}

func buildPrompt(in sentimentusecase.Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a market analyst. Rate the current market sentiment for the stock %s ", in.Symbol)
	b.WriteString("on a scale from 1 (very bearish) to 100 (very bullish), where 50 is neutral.\n")
	if len(in.Portfolio) > 0 {
		fmt.Fprintf(&b, "The investor also holds: %s. Mention relevant portfolio effects.\n", strings.Join(in.Portfolio, ", "))
	}
	if len(in.News) > 0 {
		b.WriteString("Recent headlines:\n")
		for _, n := range in.News {
			fmt.Fprintf(&b, "- %s", n.Title)
			if n.Publisher != "" {
				fmt.Fprintf(&b, " (%s)", n.Publisher)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("No recent headlines are available; rely on general knowledge and say so.\n")
	}
	b.WriteString(`Reply with JSON only: {"score": <integer 1-100>, "summary": "<two sentences>"}`)
	return b.String()
}

// parseReply accepts the JSON object with or without a markdown code fence around it.
func parseReply(text string) (reply, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return reply{}, errors.New("gemini returned an empty reply")
	}

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return reply{}, fmt.Errorf("failed to parse gemini reply: %w", err)
	}
	if r.Score < 1 || r.Score > 100 {
		return reply{}, fmt.Errorf("gemini score %d out of range", r.Score)
	}
	return r, nil
}
