package host

import (
	"time"

	"github.com/zeromicro/go-zero/core/metric"
)

const metricNamespace = "indexfund"

var (
	callsTotal = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: metricNamespace,
		Subsystem: "registry",
		Name:      "calls_total",
		Help:      "registry calls by method and result.",
		Labels:    []string{"method", "result"},
	})
	callDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: metricNamespace,
		Subsystem: "registry",
		Name:      "call_duration_ms",
		Help:      "registry call duration in milliseconds.",
		Labels:    []string{"method"},
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
	assetsGauge = metric.NewGaugeVec(&metric.GaugeVecOpts{
		Namespace: metricNamespace,
		Subsystem: "registry",
		Name:      "assets",
		Help:      "number of assets held by the registry.",
		Labels:    []string{"registry"},
	})
)

func observeCall(method string, started time.Time, err error) {
	label := methodLabel(method)
	callsTotal.Inc(label, ErrorKind(err))
	callDuration.Observe(time.Since(started).Milliseconds(), label)
}

// methodLabel keeps metric cardinality fixed: callers choose the method
// string, so anything unrecognised shares one label.
func methodLabel(method string) string {
	switch method {
	case methodDeploy, MethodRegisterController, MethodUpdateWeights:
		return method
	default:
		return "unknown"
	}
}
