package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "order",
		Name:      "operations_total",
		Help:      "Order service operations by name and outcome.",
	},
	[]string{"operation", "outcome"},
)

func observe(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	operations.WithLabelValues(operation, outcome).Inc()
}
