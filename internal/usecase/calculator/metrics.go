package calculator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess          = "success"
	outcomeInvalidOperation = "invalid_operation"
	outcomeDivisionByZero   = "division_by_zero"
	outcomeOutOfRange       = "result_out_of_range"
	outcomeStorageFailure   = "storage_failure"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculator_calculations_total",
			Help: "Total number of calculation requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	historyClearsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calculator_history_clears_total",
			Help: "Total number of successful history clears",
		},
	)
)
