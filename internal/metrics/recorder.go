// Package metrics records render and publish outcomes.
//
// Components receive a Recorder by injection and default to NoopRecorder,
// so no call site needs a nil check. PrometheusRecorder is wired by the
// server command and exposed on /metrics.
package metrics

import "time"

// ResultLabel enumerates render result categories.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultNotFound ResultLabel = "executable_not_found"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for the render and publish pipeline.
type Recorder interface {
	ObserveRender(d time.Duration, result ResultLabel)
	IncPublish(origin, store string)
	IncRemoteFailure(store string)
	IncPublishFailure()
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(time.Duration, ResultLabel) {}
func (NoopRecorder) IncPublish(string, string)                {}
func (NoopRecorder) IncRemoteFailure(string)                  {}
func (NoopRecorder) IncPublishFailure()                       {}

var _ Recorder = NoopRecorder{}
