package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exported by the monitor
type Metrics struct {
	Samples     prometheus.Counter
	Backwards   prometheus.Counter
	Mismatches  prometheus.Counter
	FrameErrors prometheus.Counter
	Dropped     prometheus.Counter
	Fallbacks   *prometheus.GaugeVec
	UptimeMs    prometheus.Gauge
}

// NewMetrics registers the monitor metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Samples: f.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc",
			Name:      "samples_total",
			Help:      "Sample reports checked.",
		}),
		Backwards: f.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc",
			Name:      "backwards_total",
			Help:      "Samples whose tick count was below the previous sample.",
		}),
		Mismatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc",
			Name:      "conversion_mismatches_total",
			Help:      "Samples whose ms or us value disagreed with the host conversion.",
		}),
		FrameErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc",
			Name:      "frame_errors_total",
			Help:      "Frames discarded for bad length, sync, sequence or CRC.",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "rtc",
			Name:      "frames_dropped_total",
			Help:      "Frames missing from the sequence.",
		}),
		Fallbacks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rtc",
			Name:      "read_fallbacks",
			Help:      "Firmware reads that needed the interrupts-off fallback.",
		}, []string{"width"}),
		UptimeMs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "rtc",
			Name:      "uptime_ms",
			Help:      "Milliseconds reported by the last sample.",
		}),
	}
}
