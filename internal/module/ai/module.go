// Package ai wires the generation gateway: the Ark vendor client, the video
// task poller, the dispatcher and the HTTP handlers.
package ai

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/arkgate/server/internal/infra/config"
	"github.com/arkgate/server/internal/module/ai/dispatch"
	"github.com/arkgate/server/internal/module/ai/handler"
	"github.com/arkgate/server/internal/module/ai/media"
	"github.com/arkgate/server/internal/module/ai/provider"
	"github.com/arkgate/server/internal/utils/metrics"
)

// ProviderSet contains all providers of the module.
var ProviderSet = wire.NewSet(
	ProvideArkClient,
	ProvideTaskClient,
	ProvidePoller,
	ProvideDispatcher,
	handler.NewChatHandler,
	handler.NewHandlers,
	NewModule,
	wire.Bind(new(dispatch.VendorClient), new(*provider.ArkClient)),
	wire.Bind(new(dispatch.VideoGenerator), new(*media.Poller)),
	wire.Bind(new(media.TaskClient), new(*media.HTTPTaskClient)),
	wire.Bind(new(handler.Dispatcher), new(*dispatch.Dispatcher)),
)

// Module is the generation module.
type Module struct {
	handlers  *handler.Handlers
	ark       *provider.ArkClient
	chatModel string
	logger    *zap.Logger
}

// NewModule creates the module.
func NewModule(cfg *config.Config, handlers *handler.Handlers, ark *provider.ArkClient, logger *zap.Logger) *Module {
	return &Module{
		handlers:  handlers,
		ark:       ark,
		chatModel: cfg.Ark.Chat.Model,
		logger:    logger,
	}
}

// RegisterRoutes registers the module routes.
func (m *Module) RegisterRoutes(r gin.IRouter) {
	m.handlers.RegisterRoutes(r)
}

// SelfCheck verifies the API key with one chat completion.
func (m *Module) SelfCheck(ctx context.Context) error {
	if err := m.ark.Ping(ctx, m.chatModel); err != nil {
		return err
	}
	m.logger.Info("ark api key verified", zap.String("model", m.chatModel))
	return nil
}

// ProvideArkClient creates the Ark SDK client.
func ProvideArkClient(cfg *config.Config, logger *zap.Logger) *provider.ArkClient {
	return provider.NewArkClient(cfg.Ark, logger)
}

// ProvideTaskClient creates the video task client.
func ProvideTaskClient(cfg *config.Config, client *http.Client) *media.HTTPTaskClient {
	return media.NewHTTPTaskClient(client, cfg.Ark.TaskEndpoint(), cfg.Ark.APIKey, cfg.Ark.Video.CallTimeout)
}

// ProvidePoller creates the video poller.
func ProvidePoller(cfg *config.Config, tasks media.TaskClient, logger *zap.Logger, m *metrics.Metrics) *media.Poller {
	v := cfg.Ark.Video
	return media.NewPoller(tasks, media.PollerConfig{
		Model:             v.Model,
		PromptSuffix:      v.PromptSuffix,
		ReferenceImageURL: v.ReferenceImageURL,
		Interval:          v.PollInterval,
		Timeout:           v.PollTimeout,
		MaxWait:           v.MaxWait,
	}, logger, m)
}

// ProvideDispatcher creates the dispatcher.
func ProvideDispatcher(
	cfg *config.Config,
	vendor dispatch.VendorClient,
	video dispatch.VideoGenerator,
	logger *zap.Logger,
	m *metrics.Metrics,
) *dispatch.Dispatcher {
	img := cfg.Ark.Image
	return dispatch.NewDispatcher(vendor, video, dispatch.Models{
		Chat:  cfg.Ark.Chat.Model,
		Image: img.Model,
		ImageOptions: provider.ImageOptions{
			Size:           img.Size,
			ResponseFormat: img.ResponseFormat,
			Watermark:      img.Watermark,
		},
	}, logger, m)
}
