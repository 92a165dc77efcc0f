package inventory

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	directionDecrease = "decrease"
	directionIncrease = "increase"
)

var adjustments = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "inventory",
		Name:      "adjustments_total",
		Help:      "Stock adjustments by direction and outcome.",
	},
	[]string{"direction", "outcome"},
)

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid"
	default:
		return "error"
	}
}

func observe(direction string, err error) {
	adjustments.WithLabelValues(direction, outcome(err)).Inc()
}
