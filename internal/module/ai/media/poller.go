package media

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arkgate/server/internal/shared/logger"
	apperrors "github.com/arkgate/server/internal/utils/errors"
	"github.com/arkgate/server/internal/utils/metrics"
)

// Terminal error messages returned to clients.
const (
	ErrMsgFailed   = "Video generation failed"
	ErrMsgTimedOut = "Video generation timed out"
)

// PollerConfig holds the fixed submission and cadence settings.
type PollerConfig struct {
	Model             string
	PromptSuffix      string
	ReferenceImageURL string
	Interval          time.Duration
	Timeout           time.Duration
	// MaxWait caps wall-clock time from submission to outcome, slow status
	// calls included. Zero disables the cap.
	MaxWait time.Duration
}

// MaxPolls returns the upper bound on status checks for one task.
func (c PollerConfig) MaxPolls() int {
	if c.Interval <= 0 {
		return 0
	}
	return int((c.Timeout + c.Interval - 1) / c.Interval)
}

// Result is the terminal success outcome of a video task.
type Result struct {
	TaskID   string
	VideoURL string
	Polls    int
	// Raw is the final status payload.
	Raw map[string]any
}

// Ambiguous reports a task that succeeded without an extractable media URL.
func (r *Result) Ambiguous() bool {
	return r.VideoURL == ""
}

// Poller submits a video task and polls it to a terminal state.
// Each call to Generate owns its own loop state.
type Poller struct {
	tasks   TaskClient
	cfg     PollerConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewPoller creates a new video poller.
func NewPoller(tasks TaskClient, cfg PollerConfig, log *zap.Logger, m *metrics.Metrics) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		tasks:   tasks,
		cfg:     cfg,
		logger:  log.Named("video"),
		metrics: m,
	}
}

// BuildRequest builds the task-creation body for prompt.
func (p *Poller) BuildRequest(prompt string) *TaskRequest {
	return &TaskRequest{
		Model: p.cfg.Model,
		Content: []ContentItem{
			{Type: ContentTypeText, Text: prompt + p.cfg.PromptSuffix},
			{Type: ContentTypeImageURL, ImageURL: &ImageURL{URL: p.cfg.ReferenceImageURL}},
		},
	}
}

// Generate runs SUBMITTED -> POLLING -> {SUCCEEDED, FAILED, TIMED_OUT}.
//
// At most MaxPolls status checks are made, one Interval apart. Past MaxWait
// the task is reported as timed out even if polls remain. A transport or
// status error on any poll is returned as is. A done ctx stops the loop
// without another poll.
func (p *Poller) Generate(ctx context.Context, prompt string) (*Result, error) {
	log := logger.FromContext(ctx, p.logger)

	taskID, err := p.tasks.CreateTask(ctx, p.BuildRequest(prompt))
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("task_id", taskID))
	maxPolls := p.cfg.MaxPolls()
	log.Info("video task submitted", zap.Int("max_polls", maxPolls))

	defer p.metrics.VideoTaskStarted()()

	pollCtx := ctx
	if p.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, p.cfg.MaxWait)
		defer cancel()
	}

	for polls := 1; polls <= maxPolls; polls++ {
		task, err := p.tasks.GetTask(pollCtx, taskID)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, p.abandon(ctx, log, taskID, polls)
			}
			log.Warn("video task poll failed", zap.Int("poll", polls), zap.Error(err))
			return nil, err
		}

		switch {
		case task.Status == StatusSucceeded:
			p.metrics.RecordVideoPoll(task.Status)
			log.Info("video task succeeded", zap.Int("polls", polls), zap.Bool("has_url", task.VideoURL != ""))
			return &Result{
				TaskID:   taskID,
				VideoURL: task.VideoURL,
				Polls:    polls,
				Raw:      task.Raw,
			}, nil
		case task.Status == StatusFailed || task.Status == StatusCancelled:
			p.metrics.RecordVideoPoll(task.Status)
			log.Warn("video task ended without output", zap.String("status", task.Status), zap.Int("polls", polls))
			return nil, apperrors.Upstream(ErrMsgFailed, nil).WithDetails(map[string]any{
				"task_id": taskID,
				"status":  task.Status,
			})
		case IsKnownStatus(task.Status):
			p.metrics.RecordVideoPoll(task.Status)
		default:
			// Undocumented statuses are treated as pending but surfaced.
			p.metrics.RecordVideoPoll("unknown")
			log.Warn("unrecognized video task status, continuing to poll", zap.String("status", task.Status))
		}

		if err := sleepContext(pollCtx, p.cfg.Interval); err != nil {
			return nil, p.abandon(ctx, log, taskID, polls)
		}
	}

	log.Warn("video task timed out", zap.Int("polls", maxPolls), zap.Duration("timeout", p.cfg.Timeout))
	return nil, timedOut(taskID)
}

// abandon classifies a loop stopped by its context: the caller's
// cancellation wins, otherwise MaxWait ran out.
func (p *Poller) abandon(ctx context.Context, log *zap.Logger, taskID string, polls int) error {
	if err := ctx.Err(); err != nil {
		log.Info("video polling abandoned", zap.Int("polls", polls), zap.Error(err))
		return err
	}
	log.Warn("video task exceeded max wait", zap.Int("polls", polls), zap.Duration("max_wait", p.cfg.MaxWait))
	return timedOut(taskID)
}

func timedOut(taskID string) error {
	return apperrors.Timeout(ErrMsgTimedOut).WithDetails(map[string]any{"task_id": taskID})
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
