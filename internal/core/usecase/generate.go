package usecase

import (
	"context"
	"log/slog"

	"github.com/legalarch/docai/internal/core/domain"
	"github.com/legalarch/docai/internal/core/ports"
	"github.com/legalarch/docai/internal/observability/metrics"
)

// GenerationChain runs field generators in priority order until one produces
// output that passes validation. The last generator is the deterministic
// fallback: its output is kept even when validation would reject it, so the
// chain always yields something.
type GenerationChain struct {
	generators []ports.FieldGenerator
	logger     *slog.Logger
	metrics    *metrics.ServiceMetrics
}

func NewGenerationChain(logger *slog.Logger, m *metrics.ServiceMetrics, generators ...ports.FieldGenerator) *GenerationChain {
	if logger == nil {
		logger = slog.Default()
	}
	kept := make([]ports.FieldGenerator, 0, len(generators))
	for _, g := range generators {
		if g != nil {
			kept = append(kept, g)
		}
	}
	return &GenerationChain{generators: kept, logger: logger, metrics: m}
}

// GenerateField produces one capped metadata field plus the attempt trail.
func (c *GenerationChain) GenerateField(ctx context.Context, field domain.Field, text string) (string, []domain.GenerationAttempt) {
	attempts := make([]domain.GenerationAttempt, 0, len(c.generators))
	lastOutput := ""

	for i, generator := range c.generators {
		output, err := generator.Generate(ctx, field, text)
		if err != nil {
			c.logger.Warn("generator failed, falling through",
				"backend", generator.Name(), "field", field, "error", err)
			attempts = append(attempts, domain.GenerationAttempt{
				Backend: generator.Name(), Field: field, Reason: err.Error(),
			})
			c.record(generator.Name(), field, "error")
			continue
		}

		ok, reason := domain.ValidateField(field, output)
		terminal := i == len(c.generators)-1
		if !ok && !terminal {
			c.logger.Info("generator output rejected",
				"backend", generator.Name(), "field", field, "reason", reason)
			attempts = append(attempts, domain.GenerationAttempt{
				Backend: generator.Name(), Field: field, Output: output, Reason: reason,
			})
			c.record(generator.Name(), field, "rejected")
			if output != "" {
				lastOutput = output
			}
			continue
		}

		capped := domain.CapFieldLength(field, output)
		attempts = append(attempts, domain.GenerationAttempt{
			Backend: generator.Name(), Field: field, Output: capped, Accept: true, Reason: reason,
		})
		c.record(generator.Name(), field, "accepted")
		return capped, attempts
	}

	// Every generator errored; the best we have is the last rejected output.
	return domain.CapFieldLength(field, lastOutput), attempts
}

func (c *GenerationChain) record(backend string, field domain.Field, verdict string) {
	if c.metrics != nil {
		c.metrics.RecordGenerationAttempt(backend, string(field), verdict)
	}
}

// Backends lists the configured generator names in fallback order.
func (c *GenerationChain) Backends() []string {
	names := make([]string, 0, len(c.generators))
	for _, g := range c.generators {
		names = append(names, g.Name())
	}
	return names
}
