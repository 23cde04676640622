package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	answers   *prometheus.CounterVec
	fallbacks prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kalendr",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kalendr",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kalendr",
			Name:      "assistant_answers_total",
			Help:      "Assistant answers by classified intent and source (rules, remote, apology).",
		}, []string{"intent", "source"}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "kalendr",
			Name:      "remote_fallbacks_total",
			Help:      "Answers served by the rules because the remote provider failed.",
		}),
	}
}
