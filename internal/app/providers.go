package app

import (
	"fmt"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/arkgate/server/internal/infra/config"
	"github.com/arkgate/server/internal/infra/httpclient"
	"github.com/arkgate/server/internal/module/ai"
	"github.com/arkgate/server/internal/shared/logger"
	"github.com/arkgate/server/internal/utils/metrics"
)

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideHTTPClient,
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
)

// AppSet provides the whole application graph.
var AppSet = wire.NewSet(
	InfraSet,
	ai.ProviderSet,
	NewApp,
)

// ProvideHTTPClient creates the pooled outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideLogger creates the zap logger. The cleanup flushes it.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return log, func() { _ = log.Sync() }, nil
}

// ProvideRegistry creates the private prometheus registry with process collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates application metrics, or nil when disabled.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(cfg.Metrics.Namespace, reg)
}
