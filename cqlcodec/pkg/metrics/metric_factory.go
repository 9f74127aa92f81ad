package metrics

type MetricFactory interface {
	GetOrCreateCounter(mn Metric) (Counter, error)
	GetOrCreateHistogram(mn Metric, buckets []float64) (Histogram, error)

	// Unregisters all registered metrics and discards all internal references to them.
	// An error is returned if at least one metric could not be unregistered.
	UnregisterAllMetrics() error
}
