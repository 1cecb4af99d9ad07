package telemetry

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// NewProvider returns an SDK tracer provider that feeds every span to the
// given processors synchronously.
func NewProvider(processors ...sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	opts := make([]sdktrace.TracerProviderOption, 0, len(processors)+1)
	opts = append(opts, sdktrace.WithSampler(sdktrace.AlwaysSample()))
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}
