// Package oracle provides the generation-oracle client used by every
// reasoning step of the analysis pipeline, plus the Gate that enforces the
// process-wide request budget and failure policy.
package oracle

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/clearleaf/greenwash-cli/internal/resilience"
)

// Client is the single-turn completion operation the pipeline needs.
// Errors are classifiable via the resilience kind helpers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Option configures the SDK-backed client.
type Option func(*sdkClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *sdkClient) {
		c.model = model
	}
}

// WithMaxTokens overrides the default response budget.
func WithMaxTokens(n int64) Option {
	return func(c *sdkClient) {
		c.maxTokens = n
	}
}

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *sdkClient) {
		c.requestOpts = append(c.requestOpts, option.WithBaseURL(url))
	}
}

type sdkClient struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	requestOpts []option.RequestOption
}

// NewClient creates an Anthropic-backed oracle client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &sdkClient{
		model:     "claude-sonnet-4-5-20250929",
		maxTokens: 4096,
	}
	c.requestOpts = append(c.requestOpts, option.WithAPIKey(apiKey))
	for _, opt := range opts {
		opt(c)
	}
	c.client = sdk.NewClient(c.requestOpts...)
	return c
}

func (c *sdkClient) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(eris.Wrap(err, "oracle: create message"))
	}

	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}

// classify tags SDK errors with a resilience kind. Structured status codes
// win; otherwise the message heuristics in KindOf apply downstream.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if kind := resilience.KindForHTTPStatus(apiErr.StatusCode); kind != resilience.KindUnknown {
			return resilience.WithKind(kind, err)
		}
	}
	return err
}
