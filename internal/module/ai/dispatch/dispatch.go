// Package dispatch routes one chat request to the chat, image or video
// generation path and normalizes the result into a Reply.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/arkgate/server/internal/module/ai/media"
	"github.com/arkgate/server/internal/module/ai/provider"
	"github.com/arkgate/server/internal/shared/logger"
	apperrors "github.com/arkgate/server/internal/utils/errors"
	"github.com/arkgate/server/internal/utils/metrics"
)

// Modality selects the generation path.
type Modality string

const (
	ModalityChat  Modality = "chat"
	ModalityImage Modality = "image"
	ModalityVideo Modality = "video"
)

// ErrMsgInvalidModel is returned for an unrecognized modality.
const ErrMsgInvalidModel = "Invalid model specified"

// ErrMsgNoMediaURL accompanies a video task that succeeded without output.
const ErrMsgNoMediaURL = "Video generation succeeded but no media URL found"

// ParseModality validates s.
func ParseModality(s string) (Modality, error) {
	switch Modality(s) {
	case ModalityChat, ModalityImage, ModalityVideo:
		return Modality(s), nil
	default:
		return "", apperrors.ClientInput(ErrMsgInvalidModel)
	}
}

// ChatRequest is the inbound request body.
type ChatRequest struct {
	UserMessage string `json:"user_message" binding:"required" example:"A cat playing piano"`
	// Model is nil only when the field is absent; an explicit null is kept
	// as an empty, invalid value.
	Model *string `json:"model,omitempty" example:"chat" enums:"chat,image,video"`
}

// UnmarshalJSON records whether model was present in the body.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	type plain ChatRequest
	var body struct {
		plain
		Model json.RawMessage `json:"model"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	*r = ChatRequest(body.plain)
	r.Model = nil
	if body.Model == nil {
		return nil
	}

	var model string
	if string(body.Model) != "null" {
		if err := json.Unmarshal(body.Model, &model); err != nil {
			return err
		}
	}
	r.Model = &model
	return nil
}

// Modality returns the requested modality. An absent model selects chat.
func (r *ChatRequest) Modality() (Modality, error) {
	if r.Model == nil {
		return ModalityChat, nil
	}
	return ParseModality(*r.Model)
}

// Reply is the normalized response. Exactly one of BotResponse, MediaURL or
// Detail is set.
type Reply struct {
	BotResponse *string        `json:"bot_response,omitempty"`
	MediaURL    *string        `json:"media_url,omitempty"`
	Detail      string         `json:"detail,omitempty"`
	RawResponse map[string]any `json:"raw_response,omitempty"`
}

// VendorClient is the synchronous chat and image capability.
type VendorClient interface {
	Complete(ctx context.Context, modelID string, messages []provider.Message) (string, error)
	GenerateImage(ctx context.Context, modelID, prompt string, opts provider.ImageOptions) (string, error)
}

// VideoGenerator runs a video task to completion.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string) (*media.Result, error)
}

// Models names the upstream model used per modality.
type Models struct {
	Chat         string
	Image        string
	ImageOptions provider.ImageOptions
}

// Dispatcher routes requests to one upstream call pattern.
type Dispatcher struct {
	vendor  VendorClient
	video   VideoGenerator
	models  Models
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(vendor VendorClient, video VideoGenerator, models Models, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		vendor:  vendor,
		video:   video,
		models:  models,
		logger:  log.Named("dispatch"),
		metrics: m,
	}
}

// Dispatch validates req and runs the selected generation path.
func (d *Dispatcher) Dispatch(ctx context.Context, req *ChatRequest) (*Reply, error) {
	modality, err := req.Modality()
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx, d.logger).With(zap.String("modality", string(modality)))
	start := time.Now()

	var reply *Reply
	switch modality {
	case ModalityChat:
		reply, err = d.chat(ctx, req.UserMessage)
	case ModalityImage:
		reply, err = d.image(ctx, req.UserMessage)
	case ModalityVideo:
		reply, err = d.generateVideo(ctx, req.UserMessage)
	}

	outcome := outcomeOf(reply, err)
	d.metrics.RecordUpstream(string(modality), outcome, time.Since(start))

	if err != nil {
		log.Warn("generation failed", zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}
	log.Debug("generation completed", zap.String("outcome", outcome), zap.Duration("took", time.Since(start)))
	return reply, nil
}

func (d *Dispatcher) chat(ctx context.Context, prompt string) (*Reply, error) {
	text, err := d.vendor.Complete(ctx, d.models.Chat, []provider.Message{provider.UserMessage(prompt)})
	if err != nil {
		return nil, upstreamError(ctx, err)
	}
	return &Reply{BotResponse: &text}, nil
}

func (d *Dispatcher) image(ctx context.Context, prompt string) (*Reply, error) {
	url, err := d.vendor.GenerateImage(ctx, d.models.Image, prompt, d.models.ImageOptions)
	if err != nil {
		return nil, upstreamError(ctx, err)
	}
	return &Reply{MediaURL: &url}, nil
}

func (d *Dispatcher) generateVideo(ctx context.Context, prompt string) (*Reply, error) {
	res, err := d.video.Generate(ctx, prompt)
	if err != nil {
		return nil, upstreamError(ctx, err)
	}
	if res.Ambiguous() {
		return &Reply{Detail: ErrMsgNoMediaURL, RawResponse: res.Raw}, nil
	}
	url := res.VideoURL
	return &Reply{MediaURL: &url}, nil
}

// upstreamError keeps classified errors and context errors as they are and
// wraps anything else as an upstream failure carrying its text.
func upstreamError(ctx context.Context, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	return apperrors.Upstream(err.Error(), err)
}

func outcomeOf(reply *Reply, err error) string {
	switch {
	case err == nil && reply != nil && reply.Detail != "":
		return metrics.OutcomeAmbiguous
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case apperrors.IsTimeout(err):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
