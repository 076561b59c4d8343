package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	passDuration   prom.Histogram
	stageResults   *prom.CounterVec
	passOutcome    *prom.CounterVec
	assetCount     prom.Histogram
	uploadResults  *prom.CounterVec
	uploadDuration *prom.HistogramVec
}

// NewPrometheusRecorder constructs and registers the normalizer metrics on
// the given registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "tianshu",
		Name:      "normalize_stage_duration_seconds",
		Help:      "Duration of individual normalization stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.passDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "tianshu",
		Name:      "normalize_pass_duration_seconds",
		Help:      "Total normalization pass duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "tianshu",
		Name:      "normalize_stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.passOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "tianshu",
		Name:      "normalize_pass_outcomes_total",
		Help:      "Normalization pass outcomes by final status",
	}, []string{"outcome"})
	pr.assetCount = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "tianshu",
		Name:      "normalize_asset_count",
		Help:      "Number of assets consolidated per pass",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
	})
	pr.uploadResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "tianshu",
		Name:      "upload_results_total",
		Help:      "Asset upload results by success/failure",
	}, []string{"result"})
	pr.uploadDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "tianshu",
		Name:      "upload_duration_seconds",
		Help:      "Duration of individual asset uploads",
		Buckets:   prom.DefBuckets,
	}, []string{"result"})
	reg.MustRegister(pr.stageDuration, pr.passDuration, pr.stageResults, pr.passOutcome, pr.assetCount, pr.uploadResults, pr.uploadDuration)
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	pr.passDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	pr.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (pr *PrometheusRecorder) IncPassOutcome(outcome string) {
	pr.passOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) ObserveAssetCount(n int) {
	pr.assetCount.Observe(float64(n))
}

func (pr *PrometheusRecorder) IncUploadResult(success bool) {
	pr.uploadResults.WithLabelValues(boolLabel(success)).Inc()
}

func (pr *PrometheusRecorder) ObserveUploadDuration(d time.Duration, success bool) {
	pr.uploadDuration.WithLabelValues(boolLabel(success)).Observe(d.Seconds())
}

func boolLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
