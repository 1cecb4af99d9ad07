package telemetry

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DocumentAttribute is the span attribute carrying the document being expanded.
const DocumentAttribute = "document"

// Timing is the wall time spent expanding one document.
type Timing struct {
	Document string
	Duration time.Duration
	Failed   bool
}

// Recorder is an sdktrace.SpanProcessor that keeps the duration of every
// top-level expansion span.
type Recorder struct {
	spanName string

	mu      sync.Mutex
	timings []Timing
}

var _ sdktrace.SpanProcessor = (*Recorder)(nil)

// NewRecorder returns a Recorder that keeps spans with the given name.
func NewRecorder(spanName string) *Recorder {
	return &Recorder{spanName: spanName}
}

// OnStart does nothing.
func (r *Recorder) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd records the span if it is an expansion span.
func (r *Recorder) OnEnd(s sdktrace.ReadOnlySpan) {
	if s.Name() != r.spanName {
		return
	}

	t := Timing{
		Duration: s.EndTime().Sub(s.StartTime()),
		Failed:   s.Status().Code == codes.Error,
	}
	for _, attr := range s.Attributes() {
		if string(attr.Key) == DocumentAttribute {
			t.Document = attr.Value.AsString()
		}
	}

	r.mu.Lock()
	r.timings = append(r.timings, t)
	r.mu.Unlock()
}

// Slowest returns up to n timings, longest first.
func (r *Recorder) Slowest(n int) []Timing {
	r.mu.Lock()
	out := slices.Clone(r.timings)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Timing) int {
		return cmp.Compare(b.Duration, a.Duration)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Reset forgets every recorded timing.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.timings = nil
	r.mu.Unlock()
}

// ForceFlush does nothing.
func (r *Recorder) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (r *Recorder) Shutdown(_ context.Context) error {
	return nil
}
