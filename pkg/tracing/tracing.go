package tracing

import (
	"context"
	"fmt"

	"stark_bridge/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

const defaultService = "stark-bridge"

type Config struct {
	Service string
	Host    string
	Port    int
	// SampleRate: доля трассируемых запросов, 0 значит все
	SampleRate float64
}

func (c Config) sampler() *jCfg.SamplerConfig {
	if c.SampleRate <= 0 || c.SampleRate >= 1 {
		return &jCfg.SamplerConfig{Type: "const", Param: 1}
	}
	return &jCfg.SamplerConfig{Type: "probabilistic", Param: c.SampleRate}
}

// InitTracer ставит jaeger глобальным трейсером opentracing.
// Без вызова глобальный трейсер noop.
func InitTracer(conf Config) (func(), error) {
	service := conf.Service
	if service == "" {
		service = defaultService
	}

	jc := &jCfg.Configuration{
		ServiceName: service,
		Sampler:     conf.sampler(),
		Reporter: &jCfg.ReporterConfig{
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	tracer, closer, err := jc.NewTracer(jCfg.Metrics(metrics.NullFactory))
	if err != nil {
		return nil, fmt.Errorf("jaeger: %w", err)
	}
	opentracing.SetGlobalTracer(tracer)
	logger.Info("tracing: %s -> %s", service, jc.Reporter.LocalAgentHostPort)

	return func() {
		if err := closer.Close(); err != nil {
			logger.Error("tracing: close: %v", err)
		}
	}, nil
}

// StartClientSpan: спан исходящего вызова к бирже.
func StartClientSpan(ctx context.Context, op, method, url string) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	ext.SpanKindRPCClient.Set(span)
	ext.HTTPMethod.Set(span, method)
	ext.HTTPUrl.Set(span, url)
	return span, ctx
}

func Finish(span opentracing.Span, status int, err error) {
	if status != 0 {
		ext.HTTPStatusCode.Set(span, uint16(status))
	}
	if err != nil {
		ext.LogError(span, err)
	}
	span.Finish()
}
