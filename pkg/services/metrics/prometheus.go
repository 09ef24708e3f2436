package metrics

import (
	"github.com/nspcc-dev/nftrader/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewPrometheusService creates a new service for gathering prometheus metrics.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}
	// Handler is shared, so all addresses expose the same metrics.
	return NewService("Prometheus", newServers(cfg.Addresses, promhttp.Handler()), cfg, log)
}
