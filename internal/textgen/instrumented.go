package textgen

import (
	"context"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// InstrumentedClient wraps a Client with tracing and prometheus metrics.
type InstrumentedClient struct {
	next     Client
	provider string
	metrics  *metrics.Manager
}

var _ Client = (*InstrumentedClient)(nil)

func NewInstrumentedClient(next Client, provider string, metricsManager *metrics.Manager) *InstrumentedClient {
	return &InstrumentedClient{
		next:     next,
		provider: provider,
		metrics:  metricsManager,
	}
}

func (c *InstrumentedClient) Complete(ctx context.Context, req Request) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "textgen.complete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("provider", c.provider),
		attribute.String("response_format", string(req.ResponseFormat)),
		attribute.Int("max_tokens", req.MaxTokens),
	)

	start := time.Now()
	completion, err := c.next.Complete(ctx, req)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Warnf("text generation [%s] failed after %s: %s", c.provider, elapsed, err)
	}

	if completion != nil {
		span.SetAttributes(
			attribute.Int("usage.prompt_tokens", completion.Usage.PromptTokens),
			attribute.Int("usage.completion_tokens", completion.Usage.CompletionTokens),
		)
	}

	if c.metrics != nil {
		c.metrics.HistogramGenerationDuration.WithLabelValues(c.provider, outcome).Observe(elapsed.Seconds())
		if completion != nil {
			c.metrics.CounterGenerationTokens.WithLabelValues(c.provider, "prompt").Add(float64(completion.Usage.PromptTokens))
			c.metrics.CounterGenerationTokens.WithLabelValues(c.provider, "completion").Add(float64(completion.Usage.CompletionTokens))
		}
	}

	return completion, err
}
