package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodesIssued counts verification codes generated and stored.
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microcredit",
		Subsystem: "verification",
		Name:      "codes_issued_total",
		Help:      "Verification codes generated.",
	})

	// CodesThrottled counts send requests answered from the resend throttle.
	CodesThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microcredit",
		Subsystem: "verification",
		Name:      "codes_throttled_total",
		Help:      "Send requests accepted without issuing a new code.",
	})

	// VerifyOutcomes counts verify calls by outcome reason.
	VerifyOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "microcredit",
		Subsystem: "verification",
		Name:      "verify_total",
		Help:      "Verify attempts by outcome.",
	}, []string{"outcome"})

	// EmailFailures counts email deliveries the provider rejected.
	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microcredit",
		Subsystem: "email",
		Name:      "failures_total",
		Help:      "Failed email deliveries.",
	})

	// CodesSwept counts records purged by the periodic sweep.
	CodesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microcredit",
		Subsystem: "verification",
		Name:      "codes_swept_total",
		Help:      "Expired codes removed by the sweep job.",
	})

	// ApplicationsSubmitted counts loan applications by submission result.
	ApplicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "microcredit",
		Subsystem: "applications",
		Name:      "submitted_total",
		Help:      "Loan application submissions by result.",
	}, []string{"result"})
)
