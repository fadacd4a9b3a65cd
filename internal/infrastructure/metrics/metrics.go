package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LabelsProcessed tracks labels handled by the dispatcher by outcome
	LabelsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nsec3gen_labels_processed_total",
		Help: "Total number of labels processed, by result (hashed, skipped)",
	}, []string{"result"})

	// HashCollisions tracks distinct labels that produced the same hash
	HashCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nsec3gen_hash_collisions_total",
		Help: "Total number of encoded hash collisions resolved by last-write-wins",
	})

	// RunsTotal tracks generation runs by final status
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nsec3gen_runs_total",
		Help: "Total number of generation runs, by status",
	}, []string{"status"})

	// RunDuration tracks wall time of the hashing phase
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nsec3gen_run_duration_seconds",
		Help:    "Histogram of hashing phase duration",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"iterations"})

	// HashRate is the throughput of the most recent run
	HashRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nsec3gen_last_run_hashes_per_second",
		Help: "Hashes per second achieved by the most recent run",
	})

	// ActiveWorkers is the worker count of the running batch
	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nsec3gen_active_workers",
		Help: "Number of dispatcher workers in the running batch",
	})
)

// Run statuses.
const (
	StatusOK            = "ok"
	StatusInvalid       = "invalid"
	StatusSourceFailed  = "source_failed"
	StatusPersistFailed = "persist_failed"
)

// WriteTextfile dumps the default registry in the node_exporter textfile
// collector format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
