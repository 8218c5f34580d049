// Package metrics provides Prometheus metrics for the reclamos service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IntakeTotal counts intake requests.
	// Labels: result (accepted, invalid, storage_failure)
	IntakeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reclamos",
			Subsystem: "intake",
			Name:      "total",
			Help:      "Total number of complaint submissions by result",
		},
		[]string{"result"},
	)

	// StoreOperationDuration tracks how long backing-medium operations take.
	// Labels: backend (file, redis), op (append, load)
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reclamos",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of record store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	// CorruptReads counts collections that failed to parse and were read as empty.
	CorruptReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reclamos",
			Subsystem: "store",
			Name:      "corrupt_reads_total",
			Help:      "Total number of reads that found an unparsable collection",
		},
		[]string{"backend"},
	)

	// CollectionSize is the number of records seen in the last load or append.
	CollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "reclamos",
			Subsystem: "store",
			Name:      "collection_size",
			Help:      "Number of complaints in the collection at the last access",
		},
		[]string{"backend"},
	)

	// DispatchTotal counts messages handed to the messaging channel.
	// Labels: kind (text, photo), result (success, error)
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reclamos",
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Total number of messages sent through the messaging channel",
		},
		[]string{"kind", "result"},
	)

	// BotTriggers counts keyword messages answered by the bot.
	BotTriggers = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reclamos",
			Subsystem: "bot",
			Name:      "keyword_triggers_total",
			Help:      "Total number of keyword messages that requested the latest complaint",
		},
	)
)

// Result returns the conventional label value for an outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
