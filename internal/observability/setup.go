package observability

import (
	"context"

	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/infrastructure/observability"
)

// Setup wires logs, metrics and traces for a process and returns the
// tracer shutdown hook.
func Setup(ctx context.Context, serviceName string, cfg *config.Config) func(context.Context) error {
	observability.InitLogger(cfg.Logging)
	observability.InitMetrics()
	observability.ServeMetrics(cfg.HTTP.MetricsAddr)
	return observability.InitTracing(ctx, serviceName, cfg.OTLPEndpoint)
}
