package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zsiec/timeframe/pkg/timecode"
)

var (
	// Conversion metrics
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeframe_conversions_total",
		Help: "Successful timecode conversions by operation and framerate",
	}, []string{"operation", "framerate"})

	conversionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeframe_conversion_errors_total",
		Help: "Failed timecode conversions by operation and error kind",
	}, []string{"operation", "kind"})

	// Preset store metrics
	presetOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeframe_preset_operations_total",
		Help: "Preset store operations by operation and result",
	}, []string{"operation", "result"})

	presetsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timeframe_presets_stored",
		Help: "Number of named framerate presets in the store",
	})

	// RTP clock metrics
	rtpPacketsStampedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeframe_rtp_packets_stamped_total",
		Help: "RTP packets mapped to a timecode, by result",
	}, []string{"result"})

	rtpTimestampWrapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timeframe_rtp_timestamp_wraps_total",
		Help: "32-bit RTP timestamp wraparounds observed",
	})

	rtcpAnchorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timeframe_rtcp_anchors_total",
		Help: "RTCP sender reports used to anchor an RTP clock",
	})

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeframe_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timeframe_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us to ~1.6s
	}, []string{"method", "route"})

	httpRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timeframe_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// RecordConversion counts a successful conversion.
func RecordConversion(operation string, rate timecode.Framerate) {
	conversionsTotal.WithLabelValues(operation, rate.String()).Inc()
}

// RecordConversionError counts a failed conversion under the error's kind.
// Errors that did not come from pkg/timecode are counted as "internal".
func RecordConversionError(operation string, err error) {
	kind := string(timecode.KindOf(err))
	if kind == "" {
		kind = "internal"
	}
	conversionErrorsTotal.WithLabelValues(operation, kind).Inc()
}

func RecordPresetOperation(operation string, err error) {
	presetOperationsTotal.WithLabelValues(operation, result(err)).Inc()
}

func SetPresetCount(n int) {
	presetsStored.Set(float64(n))
}

func RecordRTPStamp(err error) {
	rtpPacketsStampedTotal.WithLabelValues(result(err)).Inc()
}

func IncrementRTPWraps() {
	rtpTimestampWrapsTotal.Inc()
}

func IncrementRTCPAnchors() {
	rtcpAnchorsTotal.Inc()
}

// RecordHTTPRequest records one served request. route is the mux path
// template, not the raw path.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func IncrementRateLimited() {
	httpRateLimitedTotal.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
