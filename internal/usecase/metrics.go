package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"

	"github.com/gaushala-net/gaushala/internal/domain"
)

var tracer = otel.Tracer("usecase")

var gateVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaushala_gate_verdicts_total",
	Help: "Number of content gate verdicts by kind",
}, []string{"verdict"})

var postSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaushala_post_submissions_total",
	Help: "Number of post submissions by outcome",
}, []string{"outcome"})

var workshopRegistrations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaushala_workshop_registrations_total",
	Help: "Number of workshop registration attempts by outcome",
}, []string{"outcome"})

var postAttestations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaushala_post_attestations_total",
	Help: "Number of attestation attempts by outcome",
}, []string{"outcome"})

var workshopsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gaushala_workshops_created_total",
	Help: "Number of workshops committed",
})

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
