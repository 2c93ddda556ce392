package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SlotRunsTotal counts slot invocations by slot name and result.
	SlotRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jiratask_slot_runs_total",
		Help: "Slot invocations by slot and result (completed, nothing_to_do, error).",
	}, []string{"slot", "result"})

	// TransitionsTotal counts transition attempts by slot and outcome.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jiratask_transitions_total",
		Help: "Transition executions by slot and result (success, failure, not_found, no_transitions).",
	}, []string{"slot", "result"})

	// TicketsSkippedTotal counts tickets vetoed before execution.
	TicketsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jiratask_tickets_skipped_total",
		Help: "Tickets skipped before execution by slot and reason (date_mismatch).",
	}, []string{"slot", "reason"})

	// WaitOvershootSeconds observes how far past the target time the waiter
	// actually woke up.
	WaitOvershootSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jiratask_wait_overshoot_seconds",
		Help:    "Observed wake-up overshoot past the target time.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	// JiraRequestsTotal counts remote calls by operation and status.
	JiraRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jiratask_jira_requests_total",
		Help: "Jira API calls by operation (myself, search, transitions, apply) and status.",
	}, []string{"operation", "status"})

	// JiraRequestDuration observes remote call latency by operation.
	JiraRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jiratask_jira_request_duration_seconds",
		Help:    "Jira API call latency by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// SlotLockAcquisitions counts slot lock outcomes by result.
	SlotLockAcquisitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jiratask_slot_lock_acquisitions_total",
		Help: "Slot lock attempts by result (acquired, held_elsewhere, error).",
	}, []string{"result"})

	// DispatcherWakeupsTotal counts dispatcher wake-ups by slot.
	DispatcherWakeupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jiratask_dispatcher_wakeups_total",
		Help: "Dispatcher wake-ups by slot.",
	}, []string{"slot"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
