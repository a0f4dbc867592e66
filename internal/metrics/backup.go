package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "backupd"

var (
	Executions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "executions_total",
		Help:      "Backup executions triggered, by resulting status.",
	}, []string{"status"})

	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Integrity verifications, by outcome.",
	}, []string{"outcome"})

	ScheduleRecalculationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "schedule_recalculation_failures_total",
		Help:      "Schedule recalculations that failed after a job change.",
	})
)
