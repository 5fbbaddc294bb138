package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assignmentEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "assignments",
		Name:      "edits_total",
		Help:      "Total number of in-session edit operations broken down by operation.",
	}, []string{"operation"})

	assignmentSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "console",
		Subsystem: "assignments",
		Name:      "saves_total",
		Help:      "Total number of save attempts broken down by result.",
	}, []string{"result"})

	assignmentSaveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "console",
		Subsystem: "assignments",
		Name:      "save_duration_seconds",
		Help:      "Latency distribution for change-set submissions.",
		Buckets: []float64{
			0.005, 0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5,
		},
	})
)
