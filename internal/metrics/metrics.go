// Package metrics registers the Prometheus counters for the fetch and
// synthesis pipeline, exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightdash_fetch_total",
		Help: "Upstream fetches attempted, by source.",
	}, []string{"source"})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightdash_fetch_failures_total",
		Help: "Upstream fetches that ended in a failure envelope, by source.",
	}, []string{"source"})

	SynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightdash_synthesis_total",
		Help: "LLM synthesis calls attempted, by source.",
	}, []string{"source"})

	SynthesisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insightdash_synthesis_failures_total",
		Help: "LLM synthesis calls that failed or produced unparseable JSON, by source.",
	}, []string{"source"})
)
