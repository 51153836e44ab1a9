package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	xpGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_granted_total",
			Help: "Total XP granted, by event type",
		},
		[]string{"event_type"},
	)
	missionsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missions_completed_total",
			Help: "Total number of completed missions, by mission type",
		},
		[]string{"mission_type"},
	)
	badgesUnlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "badges_unlocked_total",
			Help: "Total number of badges unlocked",
		},
	)
	levelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level ups",
		},
	)
)

// InitMetrics registers the engine metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(xpGrantedTotal)
	prometheus.MustRegister(missionsCompletedTotal)
	prometheus.MustRegister(badgesUnlockedTotal)
	prometheus.MustRegister(levelUpsTotal)
}
