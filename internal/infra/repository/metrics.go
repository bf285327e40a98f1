package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository")

var commitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaushala_commit_failures_total",
	Help: "Number of aborted commits by operation",
}, []string{"op"})

var upcomingCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaushala_upcoming_cache_total",
	Help: "Upcoming workshop cache lookups by result",
}, []string{"result"})
