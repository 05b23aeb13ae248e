package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigilo_operation_submits_total",
		Help: "Total operation submit calls sent to the backend",
	}, []string{"operation"})

	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigilo_operation_polls_total",
		Help: "Total status polls sent to the backend",
	}, []string{"operation"})

	timeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vigilo_operation_timeouts_total",
		Help: "Operations that exhausted their poll attempts",
	}, []string{"operation"})
)
