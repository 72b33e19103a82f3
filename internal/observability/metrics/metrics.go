// Package metrics holds the metric names and tag conventions emitted by the
// webview backend.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/arafatkatze/cline/internal/observability/errors"
	"github.com/arafatkatze/cline/internal/observability/statsd"
)

// Cache lookup results.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheStale    = "stale"
	CacheDisabled = "disabled"
	CacheError    = "error"
)

// KeyInfoFetchMetric describes one call to the key-info endpoint.
type KeyInfoFetchMetric struct {
	Outcome  string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitKeyInfoFetch records the outcome and latency of a key-info fetch.
func EmitKeyInfoFetch(sink statsd.Sink, in KeyInfoFetchMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"outcome": in.Outcome}
	if in.Status > 0 {
		tags["status"] = strconv.Itoa(in.Status)
	}
	if class := obserrors.Classify(in.Err); class != "" {
		tags["error_class"] = class
	}
	sink.Count("keyinfo.fetch", 1, tags)
	if in.Duration > 0 {
		sink.Timing("keyinfo.fetch.duration", in.Duration, CloneTags(tags))
	}
}

// EmitCacheLookup records how a key-info query was served.
func EmitCacheLookup(sink statsd.Sink, result string) {
	if sink == nil {
		return
	}
	sink.Count("keyinfo.cache", 1, map[string]string{"result": result})
}

// SegmentationMetric describes one pass over a message log.
type SegmentationMetric struct {
	Messages int
	Pages    int
	Duration time.Duration
	Err      error
}

// EmitSegmentation records the size and result of a segmentation pass.
func EmitSegmentation(sink statsd.Sink, in SegmentationMetric) {
	if sink == nil {
		return
	}
	result := "success"
	if in.Err != nil {
		result = "error"
	}
	tags := map[string]string{"result": result}
	sink.Count("browser_session.segment", 1, tags)
	if in.Err == nil {
		sink.Gauge("browser_session.pages", float64(in.Pages), nil)
		sink.Gauge("browser_session.messages", float64(in.Messages), nil)
	}
	if in.Duration > 0 {
		sink.Timing("browser_session.segment.duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags returns a shallow copy of src, or nil when empty.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
