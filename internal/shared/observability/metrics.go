package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	entriesLoggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicelog",
		Subsystem: "diary",
		Name:      "entries_logged_total",
		Help:      "Number of log entries created, labeled by entry type.",
	}, []string{"type"})

	exerciseMergedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "voicelog",
		Subsystem: "diary",
		Name:      "exercise_merges_total",
		Help:      "Number of exercise activities folded into an existing same-day entry.",
	})

	caloriesRecalculatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "voicelog",
		Subsystem: "diary",
		Name:      "calories_recalculated_total",
		Help:      "Number of activity edits that re-ran the calorie estimator.",
	})

	extractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voicelog",
		Subsystem: "extraction",
		Name:      "duration_seconds",
		Help:      "Time spent extracting structured records from a transcript, labeled by outcome.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(entriesLoggedCounter, exerciseMergedCounter, caloriesRecalculatedCounter, extractionDuration)
}

// RecordEntryLogged counts a newly created log entry.
func RecordEntryLogged(entryType string) {
	entriesLoggedCounter.WithLabelValues(entryType).Inc()
}

// RecordExerciseMerged counts a merge into an existing activity.
func RecordExerciseMerged() {
	exerciseMergedCounter.Inc()
}

// RecordCaloriesRecalculated counts estimator runs triggered by edits.
func RecordCaloriesRecalculated(n int) {
	if n <= 0 {
		return
	}
	caloriesRecalculatedCounter.Add(float64(n))
}

// RecordExtraction observes an extraction call.
func RecordExtraction(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	extractionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
