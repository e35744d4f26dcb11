package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry stores labelled counters for exposition and mirrors every
// increment to an OpenTelemetry counter of the same base name.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*atomic.Int64 // by seriesKey
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter
}

func NewRegistry(scope string) *Registry {
	return &Registry{
		counters: make(map[string]*atomic.Int64),
		meter:    otel.GetMeterProvider().Meter(scope),
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

// seriesKey renders name{k=v,...} with labels in key order.
func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return name + "{" + strings.Join(pairs, ",") + "}"
}

// Inc adds n to the counter name{labels}. A nil registry is a no-op.
func (r *Registry) Inc(ctx context.Context, name string, labels map[string]string, n int64) {
	if r == nil {
		return
	}
	c, inst := r.instruments(seriesKey(name, labels), name)
	c.Add(n)
	if inst == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	inst.Add(ctx, n, metric.WithAttributes(attrs...))
}

// instruments returns the series counter and the OTel counter of name,
// creating them on first use. inst is nil if the meter refused it.
func (r *Registry) instruments(key, name string) (*atomic.Int64, metric.Int64Counter) {
	r.mu.RLock()
	c, inst := r.counters[key], r.otelCtrs[name]
	r.mu.RUnlock()
	if c != nil && inst != nil {
		return c, inst
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c = r.counters[key]; c == nil {
		c = new(atomic.Int64)
		r.counters[key] = c
	}
	if inst = r.otelCtrs[name]; inst == nil {
		if ctr, err := r.meter.Int64Counter(name); err == nil {
			r.otelCtrs[name] = ctr
			inst = ctr
		}
	}
	return c, inst
}

// Value returns the current value of name{labels}.
func (r *Registry) Value(name string, labels map[string]string) int64 {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.counters[seriesKey(name, labels)]; c != nil {
		return c.Load()
	}
	return 0
}

// SnapshotLines returns "key value" lines sorted by key.
func (r *Registry) SnapshotLines() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.counters))
	for k := range r.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %d", k, r.counters[k].Load()))
	}
	return lines
}

// GinHandlerText writes the counters in plain text.
func (r *Registry) GinHandlerText(c *gin.Context) {
	c.String(http.StatusOK, "%s", strings.Join(append(r.SnapshotLines(), ""), "\n"))
}

// StatusClass buckets an HTTP status code ("2xx", "4xx", ...).
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "0"
	}
	return fmt.Sprintf("%dxx", code/100)
}
