package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
	"go.uber.org/zap"

	"github.com/arkgate/server/internal/infra/config"
)

// Errors for responses that parse but carry nothing usable.
var (
	ErrEmptyCompletion = errors.New("no choices returned from chat completion API")
	ErrEmptyImage      = errors.New("no image URL returned from image generation API")
)

// pingPrompt is the message sent by the startup self-check.
const pingPrompt = "Hello"

// ArkClient implements the chat and image capabilities on the Ark runtime SDK.
type ArkClient struct {
	client *arkruntime.Client
	logger *zap.Logger
}

// NewArkClient creates an Ark client. SDK retries are disabled: every call
// is a single attempt.
func NewArkClient(cfg config.ArkConfig, logger *zap.Logger) *ArkClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []arkruntime.ConfigOption{
		arkruntime.WithBaseUrl(cfg.BaseURL),
		arkruntime.WithRetryTimes(0),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, arkruntime.WithTimeout(cfg.RequestTimeout))
	}

	return &ArkClient{
		client: arkruntime.NewClientWithApiKey(cfg.APIKey, opts...),
		logger: logger.Named("ark"),
	}
}

// Complete sends messages to modelID and returns the first choice's text.
func (c *ArkClient) Complete(ctx context.Context, modelID string, messages []Message) (string, error) {
	req := model.CreateChatCompletionRequest{
		Model:    modelID,
		Messages: make([]*model.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, &model.ChatCompletionMessage{
			Role: m.Role,
			Content: &model.ChatCompletionMessageContent{
				StringValue: volcengine.String(m.Content),
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Warn("chat completion failed", zap.String("model", modelID), zap.Error(err))
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrEmptyCompletion
	}
	content := resp.Choices[0].Message.Content
	if content == nil || content.StringValue == nil {
		return "", nil
	}
	return *content.StringValue, nil
}

// GenerateImage generates one image for prompt and returns its URL.
func (c *ArkClient) GenerateImage(ctx context.Context, modelID, prompt string, opts ImageOptions) (string, error) {
	req := model.GenerateImagesRequest{
		Model:     modelID,
		Prompt:    prompt,
		Watermark: volcengine.Bool(opts.Watermark),
	}
	if opts.Size != "" {
		req.Size = volcengine.String(opts.Size)
	}
	if opts.ResponseFormat != "" {
		req.ResponseFormat = volcengine.String(opts.ResponseFormat)
	}

	resp, err := c.client.GenerateImages(ctx, req)
	if err != nil {
		c.logger.Warn("image generation failed", zap.String("model", modelID), zap.Error(err))
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}

	if len(resp.Data) == 0 {
		return "", ErrEmptyImage
	}
	url := resp.Data[0].Url
	if url == nil || strings.TrimSpace(*url) == "" {
		return "", ErrEmptyImage
	}
	return *url, nil
}

// Ping issues one minimal chat completion to verify the API key.
func (c *ArkClient) Ping(ctx context.Context, modelID string) error {
	if _, err := c.Complete(ctx, modelID, []Message{UserMessage(pingPrompt)}); err != nil {
		return fmt.Errorf("ark api key verification failed: %w", err)
	}
	return nil
}
