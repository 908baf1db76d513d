package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kominn_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreRoundTrips counts record store round trips by list and operation.
	StoreRoundTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kominn_store_round_trips_total",
		Help: "Total number of record store round trips",
	}, []string{"list", "operation"})

	// StoreErrors counts failed record store round trips by list and operation.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kominn_store_errors_total",
		Help: "Total number of failed record store round trips",
	}, []string{"list", "operation"})

	// PublishAttempts counts external publish attempts by outcome.
	PublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kominn_publish_attempts_total",
		Help: "Total number of external publish attempts by outcome",
	}, []string{"outcome"})
)
