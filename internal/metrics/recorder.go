// Package metrics provides observability hooks for normalization passes.
//
// It follows the Null Object pattern: components receive a Recorder through
// dependency injection and default to NoopRecorder, so metrics can be enabled
// by swapping in the Prometheus implementation without touching call sites.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for normalization and upload metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObservePassDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncPassOutcome(outcome string) // outcome: success|degraded|failed
	ObserveAssetCount(n int)
	IncUploadResult(success bool)
	ObserveUploadDuration(d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObservePassDuration(time.Duration)          {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncPassOutcome(string)                      {}
func (NoopRecorder) ObserveAssetCount(int)                      {}
func (NoopRecorder) IncUploadResult(bool)                       {}
func (NoopRecorder) ObserveUploadDuration(time.Duration, bool)  {}
