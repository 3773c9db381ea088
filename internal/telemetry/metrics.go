package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики конвейера. Регистрируются в default registry,
// экспортируются каждым сервисом через promhttp на /metrics.
var (
	// DispatchTicks — количество выполненных тиков диспетчера.
	DispatchTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_dispatch_ticks_total",
		Help: "Total dispatcher ticks executed",
	})

	// SlotsDispatched — слоты, по которым поставлены задания.
	SlotsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_slots_dispatched_total",
		Help: "Schedule slots dispatched as jobs, by activity",
	}, []string{"activity"})

	// SlotsSkipped — слоты, пропущенные диспетчером (idle или без маппинга).
	SlotsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_slots_skipped_total",
		Help: "Schedule slots marked skipped, by activity",
	}, []string{"activity"})

	// JobsClaimed — задания, захваченные воркерами.
	JobsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_jobs_claimed_total",
		Help: "Jobs claimed by workers",
	})

	// JobsCompleted — успешно выполненные задания по типам.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_jobs_completed_total",
		Help: "Jobs completed successfully, by type",
	}, []string{"type"})

	// JobsFailed — проваленные задания по типам.
	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_jobs_failed_total",
		Help: "Jobs failed, by type",
	}, []string{"type"})

	// JobDuration — длительность выполнения задания по типам.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presence_job_duration_seconds",
		Help:    "Job execution duration in seconds, by type",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"type"})

	// SessionsActive — количество открытых браузерных сессий.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "presence_sessions_active",
		Help: "Browser sessions currently open",
	})
)
