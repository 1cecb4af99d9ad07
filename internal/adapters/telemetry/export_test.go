package telemetry_test

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func newSyncer(exporter sdktrace.SpanExporter) sdktrace.SpanProcessor {
	return sdktrace.NewSimpleSpanProcessor(exporter)
}
