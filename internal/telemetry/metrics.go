package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики планировщика.
var (
	ScheduleRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_scheduler_schedule_requests_total",
		Help: "Total wakeup requests added to the timeline",
	})

	WakePasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_scheduler_wake_passes_total",
		Help: "Total coordinator passes that drained due timeline entries",
	})

	WokenWorkers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_scheduler_woken_workers_total",
		Help: "Total scheduled wakeups delivered to registered workers",
	})

	StaleWakeups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_scheduler_stale_wakeups_total",
		Help: "Due timeline entries whose worker was no longer registered",
	})

	CancelledWakeups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_scheduler_cancelled_wakeups_total",
		Help: "Timeline entries removed by cancel-all requests",
	})

	TimelineBuckets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tickwork_scheduler_timeline_buckets",
		Help: "Distinct pending wakeup timestamps",
	})

	CoordinatorSleeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickwork_scheduler_sleeps_total",
		Help: "Coordinator sleeps by kind (indefinite, timeout)",
	}, []string{"kind"})
)

// Метрики воркеров.
var (
	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tickwork_workers_active",
		Help: "Workers currently running",
	})

	Cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickwork_worker_cycles_total",
		Help: "Processor cycles by result",
	}, []string{"result"})

	CycleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_worker_cycle_errors_total",
		Help: "Processor cycles that returned an error or panicked",
	})

	InputsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickwork_worker_inputs_total",
		Help: "Values delivered to worker inputs",
	})
)

// Метрики HTTP API.
var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickwork_api_http_requests_total",
		Help: "HTTP requests handled by the host API by method and status",
	}, []string{"method", "status"})
)

// Метрики брокера.
var (
	MessagesConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tickwork_mq_messages_consumed_total",
		Help: "Broker messages settled by queue and outcome (ack, requeue, dead_letter)",
	}, []string{"queue", "outcome"})
)
